/*
 * Copyright (c) 2026, NVIDIA CORPORATION.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package jyaml reads and writes the YAML documents radiodeck uses for
// node profiles and run records. Documents are converted through JSON so
// that the json struct tags of the API types apply.
package jyaml

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// MarshalYAML encodes v as YAML.
func MarshalYAML(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Unmarshal decodes a YAML or JSON document held in a string or byte slice.
// Unknown fields are ignored.
func Unmarshal[T any](object any) (T, error) {
	data, err := toBytes(object)
	if err != nil {
		return *new(T), err
	}

	var result T
	if err := yaml.Unmarshal(data, &result); err != nil {
		return *new(T), err
	}
	return result, nil
}

// UnmarshalStrict is like Unmarshal but rejects unknown and duplicate
// fields.
func UnmarshalStrict[T any](object any) (T, error) {
	data, err := toBytes(object)
	if err != nil {
		return *new(T), err
	}

	var result T
	if err := yaml.UnmarshalStrict(data, &result); err != nil {
		return *new(T), err
	}
	return result, nil
}

// UnmarshalFromFile decodes the document stored in filename.
func UnmarshalFromFile[T any](filename string) (T, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return *new(T), fmt.Errorf("error reading file: %w", err)
	}
	return Unmarshal[T](data)
}

// UnmarshalStrictFromFile decodes the document stored in filename,
// rejecting unknown fields.
func UnmarshalStrictFromFile[T any](filename string) (T, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return *new(T), fmt.Errorf("error reading file: %w", err)
	}
	result, err := UnmarshalStrict[T](data)
	if err != nil {
		return *new(T), fmt.Errorf("error decoding %s: %w", filename, err)
	}
	return result, nil
}

// WriteFile encodes v as YAML and replaces filename with it. The new
// content is written to a temporary file first so readers never observe a
// partial document.
func WriteFile(filename string, v any) error {
	data, err := MarshalYAML(v)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

func toBytes(object any) ([]byte, error) {
	switch v := object.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return yaml.Marshal(object)
	}
}

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

// Package testutil provides shared testing utilities, fixtures, and mocks
// for the radiodeck test suite.
package testutil

import (
	"os"
	"path/filepath"
)

// TB is the part of testing.TB the helpers need. GinkgoT() satisfies it.
type TB interface {
	Helper()
	TempDir() string
	Fatalf(format string, args ...any)
}

// SrsLTEConfigDir writes the stock srsLTE configuration files into a fresh
// temporary directory and returns its path.
func SrsLTEConfigDir(t TB) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range SrsLTEConfigs() {
		MustWriteFile(t, filepath.Join(dir, name), content)
	}
	return dir
}

// TempFile creates a temporary file with the given content and returns its
// path.
func TempFile(t TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	MustWriteFile(t, path, content)
	return path
}

// MustWriteFile writes content to a file, failing the test if an error occurs.
func MustWriteFile(t TB, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

// MustReadFile reads a file and returns its content, failing the test if an
// error occurs.
func MustReadFile(t TB, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(content)
}

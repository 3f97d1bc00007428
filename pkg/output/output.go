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

// Package output renders command results as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format represents the output format type
type Format string

const (
	// FormatTable outputs data as a formatted table (default)
	FormatTable Format = "table"
	// FormatJSON outputs data as JSON
	FormatJSON Format = "json"
	// FormatYAML outputs data as YAML
	FormatYAML Format = "yaml"
)

// ValidFormats returns all valid output formats
func ValidFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}
}

// IsValidFormat checks if the given format string is valid
func IsValidFormat(format string) bool {
	switch Format(format) {
	case FormatTable, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// TableData is implemented by results that can be rendered as a table.
type TableData interface {
	// Headers returns the column headers for the table
	Headers() []string
	// Rows returns the data rows for the table
	Rows() [][]string
}

// Formatter writes results to w in one format
type Formatter struct {
	format Format
	writer io.Writer
}

// NewFormatter creates a formatter writing to w. An empty format selects
// the table format.
func NewFormatter(format string, w io.Writer) (*Formatter, error) {
	if format == "" {
		format = string(FormatTable)
	}
	if !IsValidFormat(format) {
		return nil, fmt.Errorf("invalid output format %q, must be one of: %s", format, strings.Join(ValidFormats(), ", "))
	}
	return &Formatter{
		format: Format(format),
		writer: w,
	}, nil
}

// Format returns the current format
func (f *Formatter) Format() Format {
	return f.format
}

// Print outputs data in the configured format. In table format, data that
// does not implement TableData is printed as YAML.
func (f *Formatter) Print(data any) error {
	switch f.format {
	case FormatJSON:
		return f.PrintJSON(data)
	case FormatYAML:
		return f.PrintYAML(data)
	default:
		if td, ok := data.(TableData); ok {
			return f.PrintTable(td)
		}
		return f.PrintYAML(data)
	}
}

// PrintJSON outputs data as indented JSON
func (f *Formatter) PrintJSON(data any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// PrintYAML outputs data as block-style YAML. Field names follow the json
// tags of data, the same way profiles are read.
func (f *Formatter) PrintYAML(data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return err
	}
	blockStyle(&node)

	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(&node); err != nil {
		return err
	}
	return encoder.Close()
}

// blockStyle drops the flow and quoting styles a JSON document decodes
// with. Multi-line strings are written as literal blocks.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// PrintTable outputs TableData as an aligned table
func (f *Formatter) PrintTable(data TableData) error {
	tw := tabwriter.NewWriter(f.writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, strings.Join(data.Headers(), "\t")) // nolint:errcheck
	for _, row := range data.Rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t")) // nolint:errcheck
	}
	return tw.Flush()
}

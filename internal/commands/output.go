/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how records are written to stdout.
type OutputFormat string

const (
	// One JSON object per line.
	OutputJSON OutputFormat = "json"

	// A stream of YAML documents.
	OutputYAML OutputFormat = "yaml"
)

// Set implements pflag.Value.
func (f *OutputFormat) Set(s string) error {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputJSON:
		*f = OutputJSON
	case OutputYAML:
		*f = OutputYAML
	default:
		return fmt.Errorf("unknown output format %q (expected %q or %q)", s, OutputJSON, OutputYAML)
	}
	return nil
}

// String implements pflag.Value.
func (f *OutputFormat) String() string {
	if f == nil || *f == "" {
		return string(OutputJSON)
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *OutputFormat) Type() string {
	return "format"
}

var _ pflag.Value = new(OutputFormat)

func addOutputFlag(cmd *cobra.Command, format *OutputFormat) {
	cmd.Flags().VarP(format, "output", "o", "Output format, 'json' or 'yaml'.")
}

type recordWriter interface {
	Write(record any) error
	Close() error
}

type jsonRecordWriter struct {
	enc *json.Encoder
}

func (w *jsonRecordWriter) Write(record any) error {
	if err := w.enc.Encode(record); err != nil {
		return fmt.Errorf("could not write JSON output: %w", err)
	}
	return nil
}

func (w *jsonRecordWriter) Close() error {
	return nil
}

type yamlRecordWriter struct {
	enc *yaml.Encoder
}

func (w *yamlRecordWriter) Write(record any) error {
	if err := w.enc.Encode(record); err != nil {
		return fmt.Errorf("could not write YAML output: %w", err)
	}
	return nil
}

func (w *yamlRecordWriter) Close() error {
	return w.enc.Close()
}

func newRecordWriter(out io.Writer, format OutputFormat) recordWriter {
	if format == OutputYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		return &yamlRecordWriter{enc: enc}
	}
	return &jsonRecordWriter{enc: json.NewEncoder(out)}
}

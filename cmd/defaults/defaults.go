/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package defaults

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/detiber/modemterm/dte"
)

const (
	FlagFormat    = "format"
	FormatYAML    = "yaml"
	FormatJSON    = "json"
	DefaultFormat = FormatYAML
)

func NewDefaultsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the default terminal profile",
		Long:  `Print the reference default terminal configuration as a plain record`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Write(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVar(&format, FlagFormat, DefaultFormat, "output format (yaml or json)")

	return cmd
}

// Write renders the default profile to w in the requested format.
func Write(w io.Writer, format string) error {
	record := dte.DefaultConfig().Record()

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to encode defaults: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to encode defaults: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

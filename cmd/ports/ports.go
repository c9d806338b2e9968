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

package ports

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/detiber/modemterm/internal/terminal"
)

func NewPortsCommand(parentLogger *log.Logger) *cobra.Command {
	logger := log.New(parentLogger.Writer(), parentLogger.Prefix()+" [ports]", parentLogger.Flags())
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Long:  `List the serial ports the host knows about, for use as a UART device name`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := terminal.ListPorts()
			if err != nil {
				return fmt.Errorf("failed to list ports: %w", err)
			}

			for _, port := range ports {
				if port.IsUSB {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tusb %s:%s %s\n", port.Name, port.VID, port.PID, port.Product)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), port.Name)
				}
			}

			logger.Printf("found %d port(s)", len(ports))
			return nil
		},
	}

	return cmd
}

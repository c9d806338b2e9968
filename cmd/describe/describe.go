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

package describe

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/detiber/modemterm/dte"
	"github.com/detiber/modemterm/internal/config"
)

const (
	FlagWidth    = "width"
	DefaultWidth = 80
	ellipsis     = "…"
)

func NewDescribeCommand(v *viper.Viper) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Show the effective terminal configuration",
		Long:  `Show the terminal configuration after defaults, config file, environment and flags are applied`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewFromViper(v)
			if err != nil {
				return fmt.Errorf("failed to load terminal config: %w", err)
			}

			return Render(cmd.OutOrStdout(), cfg, width)
		},
	}

	cmd.Flags().IntVar(&width, FlagWidth, DefaultWidth, "maximum line width")

	return cmd
}

type row struct {
	key   string
	value string
}

// describe lists the settings of cfg in display order. Line settings the
// binding does not consult are marked unused.
func describe(cfg dte.TerminalConfig) []row {
	kind, device := "unset", ""
	lineUsed := false
	if cfg.Binding != nil {
		kind = dte.MatchBinding(cfg.Binding,
			func(dte.External) string { return string(dte.ResourceKindExternal) },
			func(dte.UART) string { return string(dte.ResourceKindUART) },
		)
		device = cfg.Binding.DeviceName()
		lineUsed = kind == string(dte.ResourceKindUART)
	}

	l := cfg.Line
	lineValue := func(s string) string {
		if lineUsed {
			return s
		}
		return s + " (unused)"
	}

	queue := "disabled"
	if l.EventQueueDepth.Enabled() {
		queue = strconv.Itoa(l.EventQueueDepth.Slots())
	}

	return []row{
		{"resource", kind},
		{"device", device},
		{"buffer size", strconv.Itoa(cfg.BufferSize)},
		{"task stack size", strconv.FormatUint(uint64(cfg.TaskStackSize), 10)},
		{"task priority", strconv.Itoa(cfg.TaskPriority)},
		{"port", lineValue(strconv.Itoa(l.Port))},
		{"framing", lineValue(fmt.Sprintf("%d%s%s", l.DataBits, parityLetter(l.Parity), l.StopBits))},
		{"baud rate", lineValue(strconv.Itoa(l.BaudRate))},
		{"flow control", lineValue(l.FlowControl.String())},
		{"pins tx/rx", lineValue(config.FormatPin(l.TXPin) + "/" + config.FormatPin(l.RXPin))},
		{"pins rts/cts", lineValue(config.FormatPin(l.RTSPin) + "/" + config.FormatPin(l.CTSPin))},
		{"rx/tx buffer", lineValue(strconv.Itoa(l.RXBufferSize) + "/" + strconv.Itoa(l.TXBufferSize))},
		{"event queue", queue},
	}
}

func parityLetter(p dte.Parity) string {
	switch p {
	case dte.ParityNone:
		return "N"
	case dte.ParityEven:
		return "E"
	case dte.ParityOdd:
		return "O"
	default:
		return "?"
	}
}

// Render writes cfg as an aligned two column table no wider than width.
func Render(w io.Writer, cfg dte.TerminalConfig, width int) error {
	rows := describe(cfg)

	keyWidth := 0
	for _, r := range rows {
		keyWidth = max(keyWidth, ansi.StringWidth(r.key))
	}

	for _, r := range rows {
		line := r.key + strings.Repeat(" ", keyWidth-ansi.StringWidth(r.key)) + "  " + r.value
		if width > 0 && ansi.StringWidth(line) > width {
			line = ansi.Truncate(line, width, ellipsis)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write description: %w", err)
		}
	}

	return nil
}

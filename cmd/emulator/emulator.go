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

package emulator

import (
	"context"
	"fmt"
	"log"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/detiber/modemterm/internal/vdev"
	"github.com/detiber/modemterm/internal/vdev/config"
)

const (
	// Local flag names, kept apart from the terminal's persistent flags
	FlagBufferSize = "vdev-" + config.FlagBufferSize
	FlagDeviceName = "vdev-" + config.FlagDeviceName
	FlagEcho       = "vdev-" + config.FlagEcho
	FlagReply      = "reply"
)

func NewEmulatorCommand(v *viper.Viper, parentLogger *log.Logger) *cobra.Command {
	logger := log.New(parentLogger.Writer(), parentLogger.Prefix()+" [emulator]", parentLogger.Flags())

	var replies map[string]string

	cmd := &cobra.Command{
		Use:   "emulator",
		Short: "Publish a virtual modem device",
		Long: `Create a pseudo terminal that answers configured lines, for use as an
externally managed terminal resource`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vdevConfig, err := config.NewFromViper(v)
			if err != nil {
				return fmt.Errorf("failed to load virtual device config: %w", err)
			}
			for _, line := range slices.Sorted(maps.Keys(replies)) {
				vdevConfig.Replies.Set(config.Reply{Line: line, Data: replies[line] + "\r\n"})
			}

			return runEmulator(cmd.Context(), cmd, vdevConfig, logger)
		},
	}

	cmd.Flags().Int(FlagBufferSize, config.DefaultBufferSize, "buffer size for reading from the pty")
	_ = v.BindPFlag(config.ViperBufferSize, cmd.Flags().Lookup(FlagBufferSize))

	cmd.Flags().String(FlagDeviceName, "", "path to publish the device under (default is the pty name)")
	_ = v.BindPFlag(config.ViperDeviceName, cmd.Flags().Lookup(FlagDeviceName))

	cmd.Flags().Bool(FlagEcho, false, "echo received lines back")
	_ = v.BindPFlag(config.ViperEcho, cmd.Flags().Lookup(FlagEcho))

	cmd.Flags().StringToStringVar(&replies, FlagReply, nil, "reply to a line, as LINE=DATA (may be repeated)")

	return cmd
}

func runEmulator(ctx context.Context, cmd *cobra.Command, vdevConfig *config.VDevConfig, logger *log.Logger) error {
	logger.Printf("Starting virtual device with config: %+v", vdevConfig)

	d, err := vdev.New(vdevConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to create virtual device: %w", err)
	}

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("failed to start virtual device: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), d.DeviceName())

	<-ctx.Done()

	if err := d.Stop(); err != nil {
		return fmt.Errorf("failed to stop virtual device: %w", err)
	}

	logger.Printf("virtual device stopped")
	return nil
}

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

package validate

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	kerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/detiber/modemterm/internal/config"
	"github.com/detiber/modemterm/internal/terminal"
)

// ErrInvalidConfig is returned when a setting cannot be parsed or fails
// validation. The binary exits with status 2 for it.
var ErrInvalidConfig = errors.New("terminal configuration is invalid")

func NewValidateCommand(v *viper.Viper, parentLogger *log.Logger) *cobra.Command {
	logger := log.New(parentLogger.Writer(), parentLogger.Prefix()+" [validate]", parentLogger.Flags())
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a terminal configuration",
		Long:  `Load the terminal configuration and report every setting that cannot be brought up`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewFromViper(v)
			if err != nil {
				// Unparsable values are reported like violations
				var agg kerrors.Aggregate
				if !errors.As(err, &agg) {
					return fmt.Errorf("failed to load terminal config: %w", err)
				}
				return invalid(cmd, agg.Errors())
			}

			var problems []error
			for _, e := range terminal.ValidateConfig(cfg) {
				problems = append(problems, e)
			}
			if len(problems) > 0 {
				return invalid(cmd, problems)
			}

			if v.GetBool("verbose") {
				logger.Printf("configuration for %q is valid", cfg.Binding.DeviceName())
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")

			return nil
		},
	}

	return cmd
}

func invalid(cmd *cobra.Command, problems []error) error {
	for _, p := range problems {
		fmt.Fprintln(cmd.OutOrStdout(), p.Error())
	}

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return fmt.Errorf("%w: %d problem(s)", ErrInvalidConfig, len(problems))
}

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

package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/detiber/modemterm/internal/config"
	"github.com/detiber/modemterm/internal/terminal"
	"github.com/detiber/modemterm/internal/vdev"
	vdevConfig "github.com/detiber/modemterm/internal/vdev/config"
)

const (
	FlagSend         = "send"
	FlagSendInterval = "send-interval"
	FlagRaw          = "raw"
	FlagRecord       = "record"

	DefaultSendInterval = 500 * time.Millisecond
)

// Options controls how a session is shown and captured.
type Options struct {
	// Raw keeps escape sequences in the output.
	Raw bool
	// Recorder, when set, receives every chunk of received data.
	Recorder *vdev.Recorder
}

func NewMonitorCommand(v *viper.Viper, parentLogger *log.Logger) *cobra.Command {
	logger := log.New(parentLogger.Writer(), parentLogger.Prefix()+" [monitor]", parentLogger.Flags())

	var (
		send       []string
		interval   time.Duration
		raw        bool
		recordFile string
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Open the terminal and print what the modem sends",
		Long: `Bring up the configured terminal, optionally send lines to the modem, and print
everything received until interrupted. With --record the exchange is saved as a
reply table the emulator can serve.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.NewFromViper(v)
			if err != nil {
				return fmt.Errorf("failed to load terminal config: %w", err)
			}

			t, err := terminal.Open(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to open terminal: %w", err)
			}
			defer func() {
				if err := t.Close(); err != nil {
					logger.Printf("Error closing terminal: %v", err)
				}
			}()

			opts := Options{Raw: raw}
			if recordFile != "" {
				opts.Recorder = vdev.NewRecorder(logger)
			}

			go func() {
				if err := Send(ctx, t, send, interval, opts.Recorder); err != nil {
					logger.Printf("Error sending: %v", err)
				}
			}()

			runErr := Run(ctx, t, cmd.OutOrStdout(), opts)

			if opts.Recorder != nil {
				if err := saveRecording(recordFile, opts.Recorder); err != nil {
					return errors.Join(runErr, err)
				}
				logger.Printf("Saved recording: %s", recordFile)
			}

			return runErr
		},
	}

	cmd.Flags().StringArrayVar(&send, FlagSend, nil, "line to send after opening, may be repeated")
	cmd.Flags().DurationVar(&interval, FlagSendInterval, DefaultSendInterval, "time to wait for a response before the next line")
	cmd.Flags().BoolVar(&raw, FlagRaw, false, "print received bytes without removing escape sequences")
	cmd.Flags().StringVar(&recordFile, FlagRecord, "", "save the session as an emulator reply table")

	return cmd
}

func saveRecording(name string, r *vdev.Recorder) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}

	if err := vdevConfig.WriteReplies(f, r.Replies()); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// Send writes each line to t terminated by CR LF, waiting interval after
// each one so the response can arrive.
func Send(ctx context.Context, t *terminal.Terminal, lines []string, interval time.Duration, r *vdev.Recorder) error {
	for _, line := range lines {
		if r != nil {
			r.RecordRequest(line)
		}

		if _, err := t.Write([]byte(line + "\r\n")); err != nil {
			return fmt.Errorf("failed to send %q: %w", line, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}

	return nil
}

// Run copies what t receives to w until ctx is done or the transport fails.
func Run(ctx context.Context, t *terminal.Terminal, w io.Writer, opts Options) error {
	output := func(b []byte) error {
		if opts.Recorder != nil {
			opts.Recorder.RecordResponse(b)
		}

		s := string(b)
		if !opts.Raw {
			s = ansi.Strip(s)
		}
		if _, err := io.WriteString(w, s); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	events := t.Events()
	if events == nil {
		return readLoop(ctx, t, output)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			switch ev.Type {
			case terminal.EventData:
				if err := output(ev.Data); err != nil {
					return err
				}
			case terminal.EventOverflow:
				fmt.Fprintf(w, "\n[%d chunk(s) dropped]\n", ev.Dropped)
			case terminal.EventError:
				if errors.Is(ev.Err, io.EOF) {
					return nil
				}
				return fmt.Errorf("error reading from %s: %w", t.DeviceName(), ev.Err)
			}
		}
	}
}

func readLoop(ctx context.Context, t *terminal.Terminal, output func([]byte) error) error {
	buffer := make([]byte, t.Config().BufferSize)

	for {
		n, err := t.Read(buffer)
		if n > 0 {
			if werr := output(buffer[:n]); werr != nil {
				return werr
			}
		}

		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			// A hung up pty reports EIO
			if errors.Is(err, syscall.EIO) {
				return nil
			}
			return fmt.Errorf("error reading from %s: %w", t.DeviceName(), err)
		}
	}
}

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

package vdev

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/detiber/modemterm/internal/vdev/config"
)

var ErrInvalidBufferSize = errors.New("buffer size must be greater than 0")
var ErrNotStarted = errors.New("virtual device not started")
var ErrPartialWrite = errors.New("partial write")

// Device is a pseudo terminal that stands in for a modem's character device.
// Its owner side answers received lines from a reply table; the other side is
// what a terminal opens as an externally managed resource.
type Device struct {
	config     *config.VDevConfig
	logger     *log.Logger
	pseudoTTY  *os.File // owner side, read and answered here
	virtualTTY *os.File // device side, handed out by name
	symlinked  bool     // DeviceName was created by Start
	cancel     context.CancelCauseFunc
	wg         sync.WaitGroup
	writeLock  sync.Mutex
}

// New creates a virtual device. It does not allocate the pty until Start.
func New(c *config.VDevConfig, logger *log.Logger) (*Device, error) {
	if logger == nil {
		logger = log.New(os.Stdout, "[vdev] ", log.LstdFlags)
	}

	if c.BufferSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBufferSize, c.BufferSize)
	}

	return &Device{
		config: c,
		logger: logger,
	}, nil
}

// Start allocates the pty, publishes it under the configured device name and
// begins answering lines.
func (d *Device) Start(ctx context.Context) error {
	pseudoTTY, virtualTTY, err := pty.Open()
	if err != nil {
		return fmt.Errorf("failed to create pty: %w", err)
	}

	d.pseudoTTY = pseudoTTY
	d.virtualTTY = virtualTTY

	// Raw mode: the device side neither echoes nor rewrites line endings
	if _, err := term.MakeRaw(int(virtualTTY.Fd())); err != nil {
		d.tryCleanup()
		return fmt.Errorf("failed to set raw mode on %s: %w", virtualTTY.Name(), err)
	}

	if d.config.DeviceName != "" && d.config.DeviceName != virtualTTY.Name() {
		if err := os.Remove(d.config.DeviceName); err != nil && !os.IsNotExist(err) {
			d.tryCleanup()
			return fmt.Errorf("failed to remove existing device %s: %w", d.config.DeviceName, err)
		}

		if err := os.Symlink(virtualTTY.Name(), d.config.DeviceName); err != nil {
			d.tryCleanup()
			return fmt.Errorf("failed to create symlink %s -> %s: %w", d.config.DeviceName, virtualTTY.Name(), err)
		}
		d.symlinked = true
		d.logger.Printf("Created virtual device: %s -> %s", d.config.DeviceName, virtualTTY.Name())
	} else {
		d.logger.Printf("Created virtual device: %s", virtualTTY.Name())
	}

	serveCtx, cancel := context.WithCancelCause(ctx)
	d.cancel = cancel
	d.wg.Go(func() { d.serve(serveCtx) })

	return nil
}

func (d *Device) serve(ctx context.Context) {
	buffer := make([]byte, d.config.BufferSize)
	line := strings.Builder{}

	for {
		n, err := d.pseudoTTY.Read(buffer)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				d.logger.Printf("Virtual device closed")
				return
			}
			// The device side has no open handle; wait for the next client.
			d.logger.Printf("Error reading from pty: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
			continue
		}

		for _, b := range buffer[:n] {
			if b != '\r' && b != '\n' {
				line.WriteByte(b)
				continue
			}
			if line.Len() == 0 {
				continue
			}
			d.handleLine(line.String())
			line.Reset()
		}
	}
}

func (d *Device) handleLine(line string) {
	d.logger.Printf("Received line: %q", line)

	if d.config.Echo {
		if err := d.write(line + "\r\n"); err != nil {
			d.logger.Printf("Error echoing line: %v", err)
		}
	}

	reply, ok := d.config.Replies.Lookup(line)
	if !ok {
		return
	}

	if reply.Delay > 0 {
		time.Sleep(reply.Delay)
	}

	if err := d.write(reply.Data); err != nil {
		d.logger.Printf("Error sending reply: %v", err)
		return
	}

	d.logger.Printf("Sent reply: %q", reply.Data)
}

// Inject writes data to the device side as if the modem had sent it
// unprompted, e.g. an unsolicited result code.
func (d *Device) Inject(data string) error {
	if d.pseudoTTY == nil {
		return ErrNotStarted
	}
	return d.write(data)
}

func (d *Device) write(data string) error {
	d.writeLock.Lock()
	defer d.writeLock.Unlock()

	n, err := d.pseudoTTY.Write([]byte(data))
	if err != nil {
		return fmt.Errorf("failed to write to pty: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrPartialWrite, n, len(data))
	}

	return nil
}

func (d *Device) tryCleanup() {
	if d.pseudoTTY != nil {
		if err := d.pseudoTTY.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			d.logger.Printf("Warning: failed to close pseudo TTY: %v", err)
		}
	}

	if d.virtualTTY != nil {
		if err := d.virtualTTY.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			d.logger.Printf("Warning: failed to close virtual TTY: %v", err)
		}
	}

	if d.symlinked {
		d.symlinked = false
		if err := os.Remove(d.config.DeviceName); err != nil && !os.IsNotExist(err) {
			d.logger.Printf("Warning: failed to remove device %s: %v", d.config.DeviceName, err)
		} else {
			d.logger.Printf("Removed device symlink: %s", d.config.DeviceName)
		}
	}
}

// Stop stops answering, releases the pty and removes the published name.
func (d *Device) Stop() error {
	if d.cancel == nil {
		return ErrNotStarted
	}

	d.cancel(nil)

	// Closing the owner side unblocks the pending read
	if err := d.pseudoTTY.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		d.logger.Printf("Warning: failed to close pseudo TTY: %v", err)
	}

	d.wg.Wait()

	d.tryCleanup()

	return nil
}

// DeviceName returns the name a terminal should open.
func (d *Device) DeviceName() string {
	if d.config.DeviceName != "" {
		return d.config.DeviceName
	}
	if d.virtualTTY != nil {
		return d.virtualTTY.Name()
	}
	return ""
}

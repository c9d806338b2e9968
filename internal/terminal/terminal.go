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

package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/detiber/modemterm/dte"
)

var ErrInvalidConfig = errors.New("invalid terminal configuration")
var ErrFlowControlUnsupported = errors.New("flow control not supported by the host serial driver")
var ErrEventQueueEnabled = errors.New("event queue enabled, consume Events instead of calling Read")
var ErrTerminalClosed = errors.New("terminal closed")
var ErrNoSerialPortFound = errors.New("no serial port found")

// EventType classifies what the service task observed on the transport.
type EventType int

const (
	// EventData carries bytes read from the transport.
	EventData EventType = iota
	// EventOverflow reports that chunks were dropped because the queue was full.
	EventOverflow
	// EventError reports a read failure; it is the last event before the queue closes.
	EventError
)

func (e EventType) String() string {
	switch e {
	case EventData:
		return "data"
	case EventOverflow:
		return "overflow"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventType(%d)", int(e))
	}
}

// Event is a single notification from the service task.
type Event struct {
	Type    EventType
	Data    []byte
	Dropped uint64
	Err     error
	Time    time.Time
}

// Terminal is the runtime side of a dte.TerminalConfig: an open transport plus
// the service task that drains it.
type Terminal struct {
	config dte.TerminalConfig
	logger *log.Logger
	port   io.ReadWriteCloser

	// events is nil when the event queue is disabled.
	events chan Event

	cancel    context.CancelCauseFunc
	stopAfter func() bool
	wg        sync.WaitGroup

	closeOnce sync.Once
	closeErr  error

	dropped         atomic.Uint64
	overflowPending bool // owned by the service task
}

// Open validates cfg and brings up the transport it describes.
//
// A UART binding creates the interface from cfg.Line; an External binding
// opens the named device and leaves its settings alone. When
// cfg.Line.EventQueueDepth is positive a service task reads into a staging
// buffer of cfg.BufferSize bytes and publishes on Events. When it is zero no
// task is started and the caller reads with Read.
//
// The terminal is closed when ctx is cancelled or Close is called.
func Open(ctx context.Context, cfg dte.TerminalConfig, logger *log.Logger) (*Terminal, error) {
	if logger == nil {
		logger = log.New(os.Stdout, "[terminal] ", log.LstdFlags)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg = cfg.DeepCopy()

	type opened struct {
		port io.ReadWriteCloser
		err  error
	}
	o := dte.MatchBinding(cfg.Binding,
		func(e dte.External) opened {
			port, err := openExternal(e.Device)
			return opened{port, err}
		},
		func(u dte.UART) opened {
			port, err := openUART(u.Device, cfg.Line)
			if err != nil {
				return opened{nil, err}
			}
			return opened{port, nil}
		},
	)
	if o.err != nil {
		return nil, o.err
	}

	t := &Terminal{
		config: cfg,
		logger: logger,
		port:   o.port,
	}

	logger.Printf("Connected to %s device: %s", bindingKind(cfg.Binding), cfg.Binding.DeviceName())
	logger.Printf("Service task hints: stack %d bytes, priority %d", cfg.TaskStackSize, cfg.TaskPriority)

	serveCtx, cancel := context.WithCancelCause(ctx)
	t.cancel = cancel
	t.stopAfter = context.AfterFunc(serveCtx, func() {
		if err := t.Close(); err != nil {
			t.logger.Printf("Warning: failed to close %s: %v", t.DeviceName(), err)
		}
	})

	if depth := cfg.Line.EventQueueDepth; depth.Enabled() {
		t.events = make(chan Event, depth.Slots())
		t.wg.Go(func() { t.serve(serveCtx) })
		logger.Printf("Event queue enabled with %d slots", depth.Slots())
	} else {
		logger.Printf("Event queue disabled, reads are direct")
	}

	return t, nil
}

func bindingKind(b dte.Binding) string {
	return dte.MatchBinding(b,
		func(dte.External) string { return "external" },
		func(dte.UART) string { return "uart" },
	)
}

// Config returns a copy of the configuration the terminal was opened with.
func (t *Terminal) Config() dte.TerminalConfig {
	return t.config.DeepCopy()
}

// DeviceName returns the name the transport was opened under.
func (t *Terminal) DeviceName() string {
	return t.config.Binding.DeviceName()
}

// Events returns the event queue, or nil when it is disabled.
// The channel is closed when the service task stops.
func (t *Terminal) Events() <-chan Event {
	if t.events == nil {
		return nil
	}
	return t.events
}

// Dropped returns the number of chunks discarded because the queue was full.
func (t *Terminal) Dropped() uint64 {
	return t.dropped.Load()
}

// Read reads directly from the transport. It is only available when the
// event queue is disabled.
func (t *Terminal) Read(p []byte) (int, error) {
	if t.events != nil {
		return 0, ErrEventQueueEnabled
	}
	return t.port.Read(p)
}

// Write writes p to the transport.
func (t *Terminal) Write(p []byte) (int, error) {
	n, err := t.port.Write(p)
	if err != nil {
		return n, fmt.Errorf("unable to write to %s: %w", t.DeviceName(), err)
	}
	return n, nil
}

// Close stops the service task and releases the transport. It is safe to
// call more than once.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		if t.stopAfter != nil {
			t.stopAfter()
		}
		if t.cancel != nil {
			t.cancel(ErrTerminalClosed)
		}

		// Closing the port unblocks a pending read in the service task
		if err := t.port.Close(); err != nil {
			t.closeErr = fmt.Errorf("unable to close %s: %w", t.DeviceName(), err)
		}

		t.wg.Wait()

		t.logger.Printf("Closed device: %s", t.DeviceName())
	})

	return t.closeErr
}

// serve is the service task: it moves bytes from the transport into the
// event queue until the port is closed or a read fails.
func (t *Terminal) serve(ctx context.Context) {
	defer close(t.events)

	buffer := make([]byte, t.config.BufferSize)

	for {
		n, err := t.port.Read(buffer)
		if n > 0 {
			t.deliver(Event{Type: EventData, Data: bytes.Clone(buffer[:n]), Time: time.Now()})
		}

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				t.logger.Printf("Device %s reached end of file", t.DeviceName())
			} else {
				t.logger.Printf("Error reading from %s: %v", t.DeviceName(), err)
			}
			t.finish(ctx, Event{Type: EventError, Err: err, Time: time.Now()})
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// finish publishes a pending overflow notice and then ev, waiting for free
// slots. It gives up when ctx is done.
func (t *Terminal) finish(ctx context.Context, ev Event) {
	if t.overflowPending {
		notice := Event{Type: EventOverflow, Dropped: t.dropped.Load(), Time: ev.Time}
		select {
		case t.events <- notice:
			t.overflowPending = false
		case <-ctx.Done():
			return
		}
	}

	select {
	case t.events <- ev:
	case <-ctx.Done():
	}
}

// deliver never blocks; a full queue drops the event and schedules an
// overflow notice for the next free slot.
func (t *Terminal) deliver(ev Event) {
	if t.overflowPending {
		notice := Event{Type: EventOverflow, Dropped: t.dropped.Load(), Time: ev.Time}
		select {
		case t.events <- notice:
			t.overflowPending = false
		default:
			t.dropped.Add(1)
			return
		}
	}

	select {
	case t.events <- ev:
	default:
		t.dropped.Add(1)
		t.overflowPending = true
	}
}

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

package dte

import (
	"errors"

	"k8s.io/utils/ptr"
)

var ErrNilBinding = errors.New("resource binding is nil")
var ErrUnknownBindingKind = errors.New("unknown resource binding kind")
var ErrUnknownFlowControl = errors.New("unknown flow control")
var ErrUnknownParity = errors.New("unknown parity")
var ErrUnknownStopBits = errors.New("unknown stop bits")

const (
	// Default values for the terminal configuration
	DefaultBufferSize    = 512
	DefaultTaskStackSize = 4096
	DefaultTaskPriority  = 5

	// Default values for the line parameters
	DefaultPort            = 1
	DefaultDataBits        = DataBits8
	DefaultStopBits        = StopBits1
	DefaultParity          = ParityNone
	DefaultFlowControl     = FlowControlNone
	DefaultBaudRate        = 115200
	DefaultTXPin           = 25
	DefaultRXPin           = 26
	DefaultRTSPin          = 27
	DefaultCTSPin          = 23
	DefaultRXBufferSize    = 4096
	DefaultTXBufferSize    = 512
	DefaultEventQueueDepth = EventQueueDepth(30)

	// DefaultDeviceName is an inert placeholder; callers are expected to replace it.
	DefaultDeviceName = "/null"
)

// TerminalConfig is everything the terminal initialization routine needs to
// bring up a DTE transport and the task that services it.
//
// Line is always present. It is only consulted when Binding is a UART; an
// External binding leaves it unused.
type TerminalConfig struct {
	// BufferSize is the staging buffer between the wire and the upper layers.
	BufferSize int

	// Scheduling hints for the service task.
	TaskStackSize uint32
	TaskPriority  int

	Line    LineParameters
	Binding Binding
}

// DefaultConfig returns the reference default profile.
// Every call returns a fresh value; pins are not shared between results.
func DefaultConfig() TerminalConfig {
	return TerminalConfig{
		BufferSize:    DefaultBufferSize,
		TaskStackSize: DefaultTaskStackSize,
		TaskPriority:  DefaultTaskPriority,
		Line:          DefaultLineParameters(),
		Binding:       UART{Device: DefaultDeviceName},
	}
}

// DefaultLineParameters returns the line settings of the default profile.
func DefaultLineParameters() LineParameters {
	return LineParameters{
		Port:            DefaultPort,
		DataBits:        DefaultDataBits,
		StopBits:        DefaultStopBits,
		Parity:          DefaultParity,
		FlowControl:     DefaultFlowControl,
		BaudRate:        DefaultBaudRate,
		TXPin:           ptr.To(DefaultTXPin),
		RXPin:           ptr.To(DefaultRXPin),
		RTSPin:          ptr.To(DefaultRTSPin),
		CTSPin:          ptr.To(DefaultCTSPin),
		RXBufferSize:    DefaultRXBufferSize,
		TXBufferSize:    DefaultTXBufferSize,
		EventQueueDepth: DefaultEventQueueDepth,
	}
}

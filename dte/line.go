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
	"fmt"
	"strconv"
)

// DataBits is the UART word length.
type DataBits int

const (
	DataBits5 DataBits = 5
	DataBits6 DataBits = 6
	DataBits7 DataBits = 7
	DataBits8 DataBits = 8
)

// Parity is the per-character parity scheme.
type Parity int

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "Parity(" + strconv.Itoa(int(p)) + ")"
	}
}

func (p Parity) IsKnown() bool {
	return p >= ParityNone && p <= ParityOdd
}

func (p Parity) MarshalText() ([]byte, error) {
	if !p.IsKnown() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownParity, int(p))
	}
	return []byte(p.String()), nil
}

func (p *Parity) UnmarshalText(text []byte) error {
	parsed, err := ParseParity(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func ParseParity(s string) (Parity, error) {
	switch s {
	case "none", "disable":
		return ParityNone, nil
	case "even":
		return ParityEven, nil
	case "odd":
		return ParityOdd, nil
	default:
		return ParityNone, fmt.Errorf("%w: %q", ErrUnknownParity, s)
	}
}

// StopBits is the number of stop bits framing each character.
type StopBits int

const (
	StopBits1 StopBits = iota
	StopBits1Point5
	StopBits2
)

func (s StopBits) String() string {
	switch s {
	case StopBits1:
		return "1"
	case StopBits1Point5:
		return "1.5"
	case StopBits2:
		return "2"
	default:
		return "StopBits(" + strconv.Itoa(int(s)) + ")"
	}
}

func (s StopBits) IsKnown() bool {
	return s >= StopBits1 && s <= StopBits2
}

func (s StopBits) MarshalText() ([]byte, error) {
	if !s.IsKnown() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStopBits, int(s))
	}
	return []byte(s.String()), nil
}

func (s *StopBits) UnmarshalText(text []byte) error {
	parsed, err := ParseStopBits(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseStopBits(s string) (StopBits, error) {
	switch s {
	case "1":
		return StopBits1, nil
	case "1.5":
		return StopBits1Point5, nil
	case "2":
		return StopBits2, nil
	default:
		return StopBits1, fmt.Errorf("%w: %q", ErrUnknownStopBits, s)
	}
}

// EventQueueDepth is the number of slots in the driver event queue.
//
// Zero is not "use a small default": it means the consumer must not
// allocate an event path at all and reads the transport directly.
type EventQueueDepth int

// EventQueueDisabled turns the event notification path off.
const EventQueueDisabled EventQueueDepth = 0

// Enabled reports whether an event queue with Slots() entries is requested.
func (d EventQueueDepth) Enabled() bool { return d > EventQueueDisabled }

// Slots returns the requested queue capacity, zero when disabled.
func (d EventQueueDepth) Slots() int {
	if !d.Enabled() {
		return 0
	}
	return int(d)
}

// LineParameters describes the framing and electrical contract of a serial transport.
type LineParameters struct {
	// Port is the platform's identity for the hardware interface.
	Port int `json:"port" mapstructure:"port" yaml:"port"`

	DataBits    DataBits    `json:"dataBits"    mapstructure:"data-bits"    yaml:"dataBits"`
	StopBits    StopBits    `json:"stopBits"    mapstructure:"stop-bits"    yaml:"stopBits"`
	Parity      Parity      `json:"parity"      mapstructure:"parity"       yaml:"parity"`
	FlowControl FlowControl `json:"flowControl" mapstructure:"flow-control" yaml:"flowControl"`
	BaudRate    int         `json:"baudRate"    mapstructure:"baud-rate"    yaml:"baudRate"`

	// Pin assignments. A nil pin is unused.
	// RTS and CTS only matter when FlowControl is FlowControlHardware.
	TXPin  *int `json:"txPin,omitempty"  mapstructure:"tx-pin"  yaml:"txPin,omitempty"`
	RXPin  *int `json:"rxPin,omitempty"  mapstructure:"rx-pin"  yaml:"rxPin,omitempty"`
	RTSPin *int `json:"rtsPin,omitempty" mapstructure:"rts-pin" yaml:"rtsPin,omitempty"`
	CTSPin *int `json:"ctsPin,omitempty" mapstructure:"cts-pin" yaml:"ctsPin,omitempty"`

	RXBufferSize int `json:"rxBufferSize" mapstructure:"rx-buffer-size" yaml:"rxBufferSize"`
	TXBufferSize int `json:"txBufferSize" mapstructure:"tx-buffer-size" yaml:"txBufferSize"`

	EventQueueDepth EventQueueDepth `json:"eventQueueDepth" mapstructure:"event-queue-depth" yaml:"eventQueueDepth"`
}

// UsesHandshakePins reports whether RTSPin and CTSPin are meaningful.
func (l LineParameters) UsesHandshakePins() bool {
	return l.FlowControl == FlowControlHardware
}

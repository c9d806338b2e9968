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

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	kerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/detiber/modemterm/dte"
)

const (
	// Flag names for command-line arguments
	FlagBufferSize      = "buffer-size"
	FlagTaskStackSize   = "task-stack-size"
	FlagTaskPriority    = "task-priority"
	FlagPort            = "port"
	FlagDataBits        = "data-bits"
	FlagStopBits        = "stop-bits"
	FlagParity          = "parity"
	FlagFlowControl     = "flow-control"
	FlagBaudRate        = "baud-rate"
	FlagTXPin           = "tx-pin"
	FlagRXPin           = "rx-pin"
	FlagRTSPin          = "rts-pin"
	FlagCTSPin          = "cts-pin"
	FlagRXBufferSize    = "rx-buffer-size"
	FlagTXBufferSize    = "tx-buffer-size"
	FlagEventQueueDepth = "event-queue-depth"
	FlagResource        = "resource"
	FlagDevice          = "device"

	// Viper prefix and keys for configuration
	ViperPrefix          = "terminal"
	ViperLinePrefix      = ViperPrefix + ".line"
	ViperResourcePrefix  = ViperPrefix + ".resource"
	ViperBufferSize      = ViperPrefix + "." + FlagBufferSize
	ViperTaskStackSize   = ViperPrefix + "." + FlagTaskStackSize
	ViperTaskPriority    = ViperPrefix + "." + FlagTaskPriority
	ViperPort            = ViperLinePrefix + "." + FlagPort
	ViperDataBits        = ViperLinePrefix + "." + FlagDataBits
	ViperStopBits        = ViperLinePrefix + "." + FlagStopBits
	ViperParity          = ViperLinePrefix + "." + FlagParity
	ViperFlowControl     = ViperLinePrefix + "." + FlagFlowControl
	ViperBaudRate        = ViperLinePrefix + "." + FlagBaudRate
	ViperTXPin           = ViperLinePrefix + "." + FlagTXPin
	ViperRXPin           = ViperLinePrefix + "." + FlagRXPin
	ViperRTSPin          = ViperLinePrefix + "." + FlagRTSPin
	ViperCTSPin          = ViperLinePrefix + "." + FlagCTSPin
	ViperRXBufferSize    = ViperLinePrefix + "." + FlagRXBufferSize
	ViperTXBufferSize    = ViperLinePrefix + "." + FlagTXBufferSize
	ViperEventQueueDepth = ViperLinePrefix + "." + FlagEventQueueDepth
	ViperResourceKind    = ViperResourcePrefix + ".kind"
	ViperDeviceName      = ViperResourcePrefix + ".device-name"

	// PinUnused is the textual form of an absent pin.
	PinUnused = "none"
)

// NewDefaultConfig returns the reference default profile.
func NewDefaultConfig() dte.TerminalConfig {
	return dte.DefaultConfig()
}

// NewFromViper starts from the default profile and overrides only the keys
// that are set in v. Values that cannot be parsed are all reported together.
func NewFromViper(v *viper.Viper) (dte.TerminalConfig, error) {
	cfg := NewDefaultConfig()
	var errs []error

	if v.IsSet(ViperBufferSize) {
		cfg.BufferSize = v.GetInt(ViperBufferSize)
	}
	if v.IsSet(ViperTaskStackSize) {
		cfg.TaskStackSize = v.GetUint32(ViperTaskStackSize)
	}
	if v.IsSet(ViperTaskPriority) {
		cfg.TaskPriority = v.GetInt(ViperTaskPriority)
	}

	if v.IsSet(ViperPort) {
		cfg.Line.Port = v.GetInt(ViperPort)
	}
	if v.IsSet(ViperDataBits) {
		cfg.Line.DataBits = dte.DataBits(v.GetInt(ViperDataBits))
	}
	if v.IsSet(ViperStopBits) {
		stopBits, err := dte.ParseStopBits(v.GetString(ViperStopBits))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ViperStopBits, err))
		}
		cfg.Line.StopBits = stopBits
	}
	if v.IsSet(ViperParity) {
		parity, err := dte.ParseParity(v.GetString(ViperParity))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ViperParity, err))
		}
		cfg.Line.Parity = parity
	}
	if v.IsSet(ViperFlowControl) {
		flowControl, err := dte.ParseFlowControl(v.GetString(ViperFlowControl))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ViperFlowControl, err))
		}
		cfg.Line.FlowControl = flowControl
	}
	if v.IsSet(ViperBaudRate) {
		cfg.Line.BaudRate = v.GetInt(ViperBaudRate)
	}

	for key, pin := range map[string]**int{
		ViperTXPin:  &cfg.Line.TXPin,
		ViperRXPin:  &cfg.Line.RXPin,
		ViperRTSPin: &cfg.Line.RTSPin,
		ViperCTSPin: &cfg.Line.CTSPin,
	} {
		if !v.IsSet(key) {
			continue
		}
		p, err := ParsePin(v.GetString(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		*pin = p
	}

	if v.IsSet(ViperRXBufferSize) {
		cfg.Line.RXBufferSize = v.GetInt(ViperRXBufferSize)
	}
	if v.IsSet(ViperTXBufferSize) {
		cfg.Line.TXBufferSize = v.GetInt(ViperTXBufferSize)
	}
	if v.IsSet(ViperEventQueueDepth) {
		// Zero is kept as is: it disables the event queue.
		cfg.Line.EventQueueDepth = dte.EventQueueDepth(v.GetInt(ViperEventQueueDepth))
	}

	if v.IsSet(ViperResourceKind) || v.IsSet(ViperDeviceName) {
		res := cfg.Record().Resource
		if v.IsSet(ViperResourceKind) {
			res.Kind = dte.ResourceKind(strings.ToLower(v.GetString(ViperResourceKind)))
		}
		if v.IsSet(ViperDeviceName) {
			res.DeviceName = v.GetString(ViperDeviceName)
		}

		binding, err := res.Binding()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ViperResourceKind, err))
		} else {
			cfg.Binding = binding
		}
	}

	if len(errs) > 0 {
		return cfg, kerrors.NewAggregate(errs)
	}

	return cfg, nil
}

// ParsePin parses a pin number. An empty string, "none" or "unused" means
// the pin is not connected.
func ParsePin(s string) (*int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", PinUnused, "unused":
		return nil, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid pin %q: %w", s, err)
	}

	return &n, nil
}

// FormatPin is the inverse of ParsePin.
func FormatPin(p *int) string {
	if p == nil {
		return PinUnused
	}
	return strconv.Itoa(*p)
}

// SetDefaults registers the default profile with v, so that writing the
// configuration out reproduces it in full.
func SetDefaults(v *viper.Viper) {
	r := NewDefaultConfig().Record()

	v.SetDefault(ViperBufferSize, r.BufferSize)
	v.SetDefault(ViperTaskStackSize, r.TaskStackSize)
	v.SetDefault(ViperTaskPriority, r.TaskPriority)

	v.SetDefault(ViperPort, r.Line.Port)
	v.SetDefault(ViperDataBits, int(r.Line.DataBits))
	v.SetDefault(ViperStopBits, r.Line.StopBits.String())
	v.SetDefault(ViperParity, r.Line.Parity.String())
	v.SetDefault(ViperFlowControl, r.Line.FlowControl.String())
	v.SetDefault(ViperBaudRate, r.Line.BaudRate)
	v.SetDefault(ViperTXPin, FormatPin(r.Line.TXPin))
	v.SetDefault(ViperRXPin, FormatPin(r.Line.RXPin))
	v.SetDefault(ViperRTSPin, FormatPin(r.Line.RTSPin))
	v.SetDefault(ViperCTSPin, FormatPin(r.Line.CTSPin))
	v.SetDefault(ViperRXBufferSize, r.Line.RXBufferSize)
	v.SetDefault(ViperTXBufferSize, r.Line.TXBufferSize)
	v.SetDefault(ViperEventQueueDepth, int(r.Line.EventQueueDepth))

	v.SetDefault(ViperResourceKind, string(r.Resource.Kind))
	v.SetDefault(ViperDeviceName, r.Resource.DeviceName)
}

// AddFlags defines a flag for every terminal setting on flagSet and binds it
// to its viper key.
func AddFlags(flagSet *pflag.FlagSet, v *viper.Viper) {
	r := NewDefaultConfig().Record()

	intVar(flagSet, v, FlagBufferSize, ViperBufferSize, r.BufferSize, "staging buffer size in bytes")
	uint32Var(flagSet, v, FlagTaskStackSize, ViperTaskStackSize, r.TaskStackSize, "service task stack size hint in bytes")
	intVar(flagSet, v, FlagTaskPriority, ViperTaskPriority, r.TaskPriority, "service task priority hint")

	intVar(flagSet, v, FlagPort, ViperPort, r.Line.Port, "hardware interface number")
	intVar(flagSet, v, FlagDataBits, ViperDataBits, int(r.Line.DataBits), "data bits: 5, 6, 7 or 8")
	stringVar(flagSet, v, FlagStopBits, ViperStopBits, r.Line.StopBits.String(), "stop bits: 1, 1.5 or 2")
	stringVar(flagSet, v, FlagParity, ViperParity, r.Line.Parity.String(), "parity: none, even or odd")
	stringVar(flagSet, v, FlagFlowControl, ViperFlowControl, r.Line.FlowControl.String(),
		"flow control: none, software or hardware")
	intVar(flagSet, v, FlagBaudRate, ViperBaudRate, r.Line.BaudRate, "baud rate")
	stringVar(flagSet, v, FlagTXPin, ViperTXPin, FormatPin(r.Line.TXPin), "TXD pin number, or none")
	stringVar(flagSet, v, FlagRXPin, ViperRXPin, FormatPin(r.Line.RXPin), "RXD pin number, or none")
	stringVar(flagSet, v, FlagRTSPin, ViperRTSPin, FormatPin(r.Line.RTSPin), "RTS pin number, or none")
	stringVar(flagSet, v, FlagCTSPin, ViperCTSPin, FormatPin(r.Line.CTSPin), "CTS pin number, or none")
	intVar(flagSet, v, FlagRXBufferSize, ViperRXBufferSize, r.Line.RXBufferSize, "driver RX buffer size in bytes")
	intVar(flagSet, v, FlagTXBufferSize, ViperTXBufferSize, r.Line.TXBufferSize, "driver TX buffer size in bytes")
	intVar(flagSet, v, FlagEventQueueDepth, ViperEventQueueDepth, int(r.Line.EventQueueDepth),
		"event queue slots, 0 disables the event queue")

	stringVar(flagSet, v, FlagResource, ViperResourceKind, string(r.Resource.Kind),
		"who owns the device: uart (created from the line settings) or external")
	stringVar(flagSet, v, FlagDevice, ViperDeviceName, r.Resource.DeviceName, "device path, e.g. /dev/ttyUSB0")
}

func intVar(flagSet *pflag.FlagSet, v *viper.Viper, name, key string, defaultValue int, description string) {
	flagSet.Int(name, defaultValue, description)
	_ = v.BindPFlag(key, flagSet.Lookup(name))
}

func uint32Var(flagSet *pflag.FlagSet, v *viper.Viper, name, key string, defaultValue uint32, description string) {
	flagSet.Uint32(name, defaultValue, description)
	_ = v.BindPFlag(key, flagSet.Lookup(name))
}

func stringVar(flagSet *pflag.FlagSet, v *viper.Viper, name, key, defaultValue, description string) {
	flagSet.String(name, defaultValue, description)
	_ = v.BindPFlag(key, flagSet.Lookup(name))
}

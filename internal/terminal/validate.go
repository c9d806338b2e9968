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
	"fmt"
	"path"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/detiber/modemterm/dte"
)

const (
	// MaxTaskPriority is the highest priority the service task scheduler accepts.
	MaxTaskPriority = 24
)

// Validate checks cfg at the boundary, before any resource is created.
// All violations are reported together as an aggregate error.
func Validate(cfg dte.TerminalConfig) error {
	return ValidateConfig(cfg).ToAggregate()
}

// ValidateConfig returns every violation in cfg.
// LineParameters are only checked when the binding is a UART, except the
// event queue depth, which is checked for every binding.
func ValidateConfig(cfg dte.TerminalConfig) field.ErrorList {
	var errs field.ErrorList

	if cfg.BufferSize <= 0 {
		errs = append(errs, field.Invalid(field.NewPath("bufferSize"), cfg.BufferSize, "must be greater than 0"))
	}
	if cfg.TaskStackSize == 0 {
		errs = append(errs, field.Invalid(field.NewPath("taskStackSize"), cfg.TaskStackSize, "must be greater than 0"))
	}
	if cfg.TaskPriority < 0 || cfg.TaskPriority > MaxTaskPriority {
		errs = append(errs, field.Invalid(field.NewPath("taskPriority"), cfg.TaskPriority,
			fmt.Sprintf("must be between 0 and %d", MaxTaskPriority)))
	}

	resPath := field.NewPath("resourceBinding")
	switch b := cfg.Binding.(type) {
	case nil:
		errs = append(errs, field.Required(resPath, "a resource binding is required"))
	case dte.External:
		errs = append(errs, validateDeviceName(resPath.Child("deviceName"), b.Device)...)
		// The queue depth selects the read path for either binding.
		errs = append(errs, validateEventQueueDepth(cfg.Line.EventQueueDepth,
			field.NewPath("lineParameters", "eventQueueDepth"))...)
	case dte.UART:
		errs = append(errs, validateDeviceName(resPath.Child("deviceName"), b.Device)...)
		if b.Device != "" && !path.IsAbs(b.Device) {
			errs = append(errs, field.Invalid(resPath.Child("deviceName"), b.Device, "must be an absolute device path"))
		}
		errs = append(errs, ValidateLineParameters(cfg.Line, field.NewPath("lineParameters"))...)
	default:
		errs = append(errs, field.TypeInvalid(resPath, fmt.Sprintf("%T", b), "must be External or UART"))
	}

	return errs
}

func validateDeviceName(fldPath *field.Path, name string) field.ErrorList {
	if strings.TrimSpace(name) == "" {
		return field.ErrorList{field.Required(fldPath, "device name must not be empty")}
	}
	return nil
}

func validateEventQueueDepth(depth dte.EventQueueDepth, fldPath *field.Path) field.ErrorList {
	if depth < dte.EventQueueDisabled {
		return field.ErrorList{field.Invalid(fldPath, int(depth),
			"must be 0 (disabled) or a positive number of slots")}
	}
	return nil
}

// ValidateLineParameters checks the framing, buffer and pin settings of a UART.
func ValidateLineParameters(l dte.LineParameters, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList

	if l.Port < 0 {
		errs = append(errs, field.Invalid(fldPath.Child("port"), l.Port, "must not be negative"))
	}
	if l.DataBits < dte.DataBits5 || l.DataBits > dte.DataBits8 {
		errs = append(errs, field.NotSupported(fldPath.Child("dataBits"), int(l.DataBits),
			[]string{"5", "6", "7", "8"}))
	}
	if !l.StopBits.IsKnown() {
		errs = append(errs, field.NotSupported(fldPath.Child("stopBits"), l.StopBits.String(),
			[]string{dte.StopBits1.String(), dte.StopBits1Point5.String(), dte.StopBits2.String()}))
	}
	if !l.Parity.IsKnown() {
		errs = append(errs, field.NotSupported(fldPath.Child("parity"), l.Parity.String(),
			[]string{dte.ParityNone.String(), dte.ParityEven.String(), dte.ParityOdd.String()}))
	}
	if !l.FlowControl.IsKnown() {
		supported := make([]string, 0, len(dte.FlowControls))
		for _, f := range dte.FlowControls {
			supported = append(supported, f.String())
		}
		errs = append(errs, field.NotSupported(fldPath.Child("flowControl"), l.FlowControl.String(), supported))
	}
	if l.BaudRate <= 0 {
		errs = append(errs, field.Invalid(fldPath.Child("baudRate"), l.BaudRate, "must be greater than 0"))
	}
	if l.RXBufferSize <= 0 {
		errs = append(errs, field.Invalid(fldPath.Child("rxBufferSize"), l.RXBufferSize, "must be greater than 0"))
	}
	if l.TXBufferSize <= 0 {
		errs = append(errs, field.Invalid(fldPath.Child("txBufferSize"), l.TXBufferSize, "must be greater than 0"))
	}
	errs = append(errs, validateEventQueueDepth(l.EventQueueDepth, fldPath.Child("eventQueueDepth"))...)

	errs = append(errs, validatePins(l, fldPath)...)

	return errs
}

func validatePins(l dte.LineParameters, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList

	pins := []struct {
		name string
		pin  *int
	}{
		{"txPin", l.TXPin},
		{"rxPin", l.RXPin},
		{"rtsPin", l.RTSPin},
		{"ctsPin", l.CTSPin},
	}

	seen := make(map[int]string, len(pins))
	for _, p := range pins {
		if p.pin == nil {
			continue
		}
		// RTS/CTS are ignored unless hardware flow control is on.
		if !l.UsesHandshakePins() && (p.name == "rtsPin" || p.name == "ctsPin") {
			continue
		}

		if *p.pin < 0 {
			errs = append(errs, field.Invalid(fldPath.Child(p.name), *p.pin, "must not be negative, leave unset for unused"))
			continue
		}
		if other, ok := seen[*p.pin]; ok {
			errs = append(errs, field.Duplicate(fldPath.Child(p.name), fmt.Sprintf("pin %d already assigned to %s", *p.pin, other)))
			continue
		}
		seen[*p.pin] = p.name
	}

	if l.UsesHandshakePins() {
		if l.RTSPin == nil {
			errs = append(errs, field.Required(fldPath.Child("rtsPin"), "required for hardware flow control"))
		}
		if l.CTSPin == nil {
			errs = append(errs, field.Required(fldPath.Child("ctsPin"), "required for hardware flow control"))
		}
	}

	return errs
}

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

import "fmt"

// Binding selects who creates and owns the character device behind the terminal.
// It is implemented only by External and UART.
type Binding interface {
	// DeviceName is the path-like identifier used to address the device.
	DeviceName() string

	isBinding()
}

// External references a device whose lifecycle belongs to someone else.
// The consumer takes no action to set it up and ignores LineParameters.
type External struct {
	Device string `json:"deviceName" yaml:"deviceName"`
}

func (e External) DeviceName() string { return e.Device }
func (External) isBinding()           {}

// UART asks the consumer to create the interface from the configuration's
// LineParameters and register it under Device.
type UART struct {
	Device string `json:"deviceName" yaml:"deviceName"`
}

func (u UART) DeviceName() string { return u.Device }
func (UART) isBinding()           {}

// MatchBinding calls the handler for b's variant and returns its result.
// It panics when b is nil or a type other than External or UART.
func MatchBinding[T any](b Binding, onExternal func(External) T, onUART func(UART) T) T {
	switch v := b.(type) {
	case External:
		return onExternal(v)
	case UART:
		return onUART(v)
	case nil:
		panic(ErrNilBinding)
	default:
		panic(fmt.Errorf("%w: %T", ErrUnknownBindingKind, b))
	}
}

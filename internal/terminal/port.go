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
	"io"
	"os"

	"go.bug.st/serial"

	"github.com/detiber/modemterm/dte"
)

// serialMode translates line parameters into the host driver's mode.
func serialMode(l dte.LineParameters) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: l.BaudRate,
		DataBits: int(l.DataBits),
	}

	switch l.Parity {
	case dte.ParityNone:
		mode.Parity = serial.NoParity
	case dte.ParityEven:
		mode.Parity = serial.EvenParity
	case dte.ParityOdd:
		mode.Parity = serial.OddParity
	default:
		return nil, fmt.Errorf("%w: %s", dte.ErrUnknownParity, l.Parity)
	}

	switch l.StopBits {
	case dte.StopBits1:
		mode.StopBits = serial.OneStopBit
	case dte.StopBits1Point5:
		mode.StopBits = serial.OnePointFiveStopBits
	case dte.StopBits2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("%w: %s", dte.ErrUnknownStopBits, l.StopBits)
	}

	switch l.FlowControl {
	case dte.FlowControlNone:
	case dte.FlowControlSoftware, dte.FlowControlHardware:
		return nil, fmt.Errorf("%w: %s", ErrFlowControlUnsupported, l.FlowControl)
	default:
		return nil, fmt.Errorf("%w: %s", dte.ErrUnknownFlowControl, l.FlowControl)
	}

	return mode, nil
}

// openUART creates the interface described by l. The returned port is owned
// by the terminal.
func openUART(name string, l dte.LineParameters) (serial.Port, error) {
	mode, err := serialMode(l)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("unable to open serial port %s: %w", name, err)
	}

	// Start from a clean state
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("unable to reset input buffer on %s: %w", name, err)
	}
	if err := port.ResetOutputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("unable to reset output buffer on %s: %w", name, err)
	}

	return port, nil
}

// openExternal opens a character device somebody else set up.
// Its line settings are left exactly as the owner configured them.
func openExternal(name string) (io.ReadWriteCloser, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("unable to open external device %s: %w", name, err)
	}

	return f, nil
}

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

// FlowControl selects how the DTE keeps the remote side from overrunning its buffers.
type FlowControl int

const (
	FlowControlNone FlowControl = iota
	FlowControlSoftware
	FlowControlHardware
)

// FlowControls lists every member of the closed set.
var FlowControls = []FlowControl{FlowControlNone, FlowControlSoftware, FlowControlHardware} //nolint:gochecknoglobals

func (f FlowControl) String() string {
	switch f {
	case FlowControlNone:
		return "none"
	case FlowControlSoftware:
		return "software"
	case FlowControlHardware:
		return "hardware"
	default:
		return "FlowControl(" + strconv.Itoa(int(f)) + ")"
	}
}

// IsKnown reports whether f is one of the three defined values.
func (f FlowControl) IsKnown() bool {
	return f >= FlowControlNone && f <= FlowControlHardware
}

func (f FlowControl) MarshalText() ([]byte, error) {
	if !f.IsKnown() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFlowControl, int(f))
	}
	return []byte(f.String()), nil
}

func (f *FlowControl) UnmarshalText(text []byte) error {
	parsed, err := ParseFlowControl(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFlowControl accepts the textual forms produced by String, plus the
// common aliases xonxoff and rtscts. An empty string is rejected.
func ParseFlowControl(s string) (FlowControl, error) {
	switch s {
	case "none":
		return FlowControlNone, nil
	case "software", "xonxoff":
		return FlowControlSoftware, nil
	case "hardware", "rtscts":
		return FlowControlHardware, nil
	default:
		return FlowControlNone, fmt.Errorf("%w: %q", ErrUnknownFlowControl, s)
	}
}

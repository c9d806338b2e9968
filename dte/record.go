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

// ResourceKind is the serialized tag of a Binding.
type ResourceKind string

const (
	ResourceKindExternal ResourceKind = "external"
	ResourceKindUART     ResourceKind = "uart"
)

// ResourceRecord is the plain form of a Binding.
type ResourceRecord struct {
	Kind       ResourceKind `json:"kind"       mapstructure:"kind"        yaml:"kind"`
	DeviceName string       `json:"deviceName" mapstructure:"device-name" yaml:"deviceName"`
}

// Record is the plain, tag-annotated form of a TerminalConfig.
// FromRecord(c.Record()) reproduces c exactly.
type Record struct {
	BufferSize    int            `json:"bufferSize"    mapstructure:"buffer-size"     yaml:"bufferSize"`
	TaskStackSize uint32         `json:"taskStackSize" mapstructure:"task-stack-size" yaml:"taskStackSize"`
	TaskPriority  int            `json:"taskPriority"  mapstructure:"task-priority"   yaml:"taskPriority"`
	Line          LineParameters `json:"line"          mapstructure:"line"            yaml:"line"`
	Resource      ResourceRecord `json:"resource"      mapstructure:"resource"        yaml:"resource"`
}

// Record converts c to its plain form. A nil binding yields an empty resource.
func (c TerminalConfig) Record() Record {
	r := Record{
		BufferSize:    c.BufferSize,
		TaskStackSize: c.TaskStackSize,
		TaskPriority:  c.TaskPriority,
		Line:          c.Line.DeepCopy(),
	}

	if c.Binding != nil {
		r.Resource = MatchBinding(c.Binding,
			func(e External) ResourceRecord {
				return ResourceRecord{Kind: ResourceKindExternal, DeviceName: e.Device}
			},
			func(u UART) ResourceRecord {
				return ResourceRecord{Kind: ResourceKindUART, DeviceName: u.Device}
			},
		)
	}

	return r
}

// FromRecord rebuilds a TerminalConfig from its plain form.
// An empty kind produces a nil binding; any other unknown kind is an error.
func FromRecord(r Record) (TerminalConfig, error) {
	c := TerminalConfig{
		BufferSize:    r.BufferSize,
		TaskStackSize: r.TaskStackSize,
		TaskPriority:  r.TaskPriority,
		Line:          r.Line.DeepCopy(),
	}

	b, err := r.Resource.Binding()
	if err != nil {
		return TerminalConfig{}, err
	}
	c.Binding = b

	return c, nil
}

// Binding returns the variant named by r.Kind.
func (r ResourceRecord) Binding() (Binding, error) {
	switch r.Kind {
	case ResourceKindExternal:
		return External{Device: r.DeviceName}, nil
	case ResourceKindUART:
		return UART{Device: r.DeviceName}, nil
	case "":
		if r.DeviceName != "" {
			return nil, fmt.Errorf("%w: empty kind for device %q", ErrUnknownBindingKind, r.DeviceName)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBindingKind, r.Kind)
	}
}

// DeepCopy returns a copy of l that shares no pin storage with l.
func (l LineParameters) DeepCopy() LineParameters {
	out := l
	out.TXPin = copyPin(l.TXPin)
	out.RXPin = copyPin(l.RXPin)
	out.RTSPin = copyPin(l.RTSPin)
	out.CTSPin = copyPin(l.CTSPin)
	return out
}

// DeepCopy returns a copy of c that shares no pin storage with c.
// Bindings are plain values and are copied as such.
func (c TerminalConfig) DeepCopy() TerminalConfig {
	out := c
	out.Line = c.Line.DeepCopy()
	return out
}

func copyPin(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

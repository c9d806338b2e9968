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
	"io"
	"slices"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// Default values for the virtual device configuration
	DefaultBufferSize = 512

	// Flag names for command-line arguments
	FlagBufferSize = "buffer-size"
	FlagDeviceName = "device-name"
	FlagEcho       = "echo"

	// Viper prefix and keys for configuration
	ViperPrefix     = "vdev"
	ViperBufferSize = ViperPrefix + "." + FlagBufferSize
	ViperDeviceName = ViperPrefix + "." + FlagDeviceName
	ViperEcho       = ViperPrefix + "." + FlagEcho
	ViperReplies    = ViperPrefix + ".replies"
)

// NewDefaultConfig returns a VDevConfig with default values
func NewDefaultConfig() *VDevConfig {
	return &VDevConfig{
		BufferSize: DefaultBufferSize,
		DeviceName: "",
		Echo:       false,
		Replies:    Replies{},
	}
}

// NewFromViper creates a VDevConfig from a viper instance. A reply table
// that cannot be decoded is an error.
func NewFromViper(v *viper.Viper) (*VDevConfig, error) {
	cfg := NewDefaultConfig()

	if v.IsSet(ViperBufferSize) {
		cfg.BufferSize = v.GetInt(ViperBufferSize)
	}
	if v.IsSet(ViperDeviceName) {
		cfg.DeviceName = v.GetString(ViperDeviceName)
	}
	if v.IsSet(ViperEcho) {
		cfg.Echo = v.GetBool(ViperEcho)
	}
	if v.IsSet(ViperReplies) {
		if err := v.UnmarshalKey(ViperReplies, &cfg.Replies); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", ViperReplies, err)
		}
	}

	return cfg, nil
}

// VDevConfig describes a pseudo terminal published under a device name.
type VDevConfig struct {
	BufferSize int    `json:"bufferSize" mapstructure:"buffer-size" yaml:"bufferSize"`
	DeviceName string `json:"deviceName" mapstructure:"device-name" yaml:"deviceName"`

	// Echo writes every received line back before any reply.
	Echo bool `json:"echo" mapstructure:"echo" yaml:"echo"`

	Replies Replies `json:"replies" mapstructure:"replies" yaml:"replies"`
}

// Reply is the canned answer to one received line.
type Reply struct {
	Line  string        `json:"line"            mapstructure:"line"  yaml:"line"`
	Data  string        `json:"data"            mapstructure:"data"  yaml:"data"`
	Delay time.Duration `json:"delay,omitempty" mapstructure:"delay" yaml:"delay,omitempty"`
}

type Replies []Reply

// Lookup returns the reply configured for line.
func (r Replies) Lookup(line string) (Reply, bool) {
	i := slices.IndexFunc(r, func(reply Reply) bool {
		return reply.Line == line
	})
	if i < 0 {
		return Reply{}, false
	}
	return r[i], true
}

// Set replaces the reply for line, or appends one.
func (r *Replies) Set(reply Reply) {
	i := slices.IndexFunc(*r, func(existing Reply) bool {
		return existing.Line == reply.Line
	})
	if i >= 0 {
		(*r)[i] = reply
		return
	}
	*r = append(*r, reply)
}

// WriteReplies writes replies as a config file fragment that NewFromViper
// reads back under the vdev key.
func WriteReplies(w io.Writer, replies Replies) error {
	doc := map[string]map[string]Replies{
		ViperPrefix: {"replies": replies},
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode replies: %w", err)
	}

	return enc.Close()
}

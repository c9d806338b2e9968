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

package defaults

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/detiber/modemterm/dte"
)

var _ = Describe("Write", func() {
	It("should emit a YAML record of the default profile", func() {
		var buf bytes.Buffer
		Expect(Write(&buf, FormatYAML)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("baudRate: 115200"))

		var r dte.Record
		Expect(yaml.Unmarshal(buf.Bytes(), &r)).To(Succeed())

		cfg, err := dte.FromRecord(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(dte.DefaultConfig()))
	})

	It("should emit a JSON record of the default profile", func() {
		var buf bytes.Buffer
		Expect(Write(&buf, FormatJSON)).To(Succeed())

		var r dte.Record
		Expect(json.Unmarshal(buf.Bytes(), &r)).To(Succeed())
		Expect(r).To(Equal(dte.DefaultConfig().Record()))
	})

	It("should reject an unknown format", func() {
		var buf bytes.Buffer
		Expect(Write(&buf, "toml")).To(MatchError(ContainSubstring("unsupported format")))
		Expect(buf.Len()).To(BeZero())
	})

	It("should run as a command", func() {
		var buf bytes.Buffer
		cmd := NewDefaultsCommand()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--format", "json"})

		Expect(cmd.Execute()).To(Succeed())
		Expect(buf.String()).To(ContainSubstring(`"kind": "uart"`))
	})
})

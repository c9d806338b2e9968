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

package validate

import (
	"bytes"
	"log"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/detiber/modemterm/internal/config"
)

var _ = Describe("validate command", func() {
	var (
		v   *viper.Viper
		out bytes.Buffer
	)

	run := func() ([]string, error) {
		out.Reset()

		cmd := NewValidateCommand(v, log.New(GinkgoWriter, "[test] ", 0))
		cmd.SetOut(&out)
		cmd.SetErr(GinkgoWriter)
		cmd.SetArgs([]string{})

		err := cmd.Execute()
		return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n"), err
	}

	BeforeEach(func() {
		v = viper.New()
		config.SetDefaults(v)
	})

	It("should print ok for the default profile", func() {
		lines, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"ok"}))
	})

	It("should print every violation", func() {
		v.Set(config.ViperBufferSize, 0)
		v.Set(config.ViperBaudRate, 0)

		lines, err := run()
		Expect(err).To(MatchError(ErrInvalidConfig))
		Expect(err).To(MatchError(ContainSubstring("2 problem(s)")))
		Expect(lines).To(ConsistOf(
			HavePrefix("bufferSize: Invalid value: 0"),
			HavePrefix("lineParameters.baudRate: Invalid value: 0"),
		))
	})

	It("should report unparsable values as an invalid configuration", func() {
		v.Set(config.ViperParity, "mark")
		v.Set(config.ViperTXPin, "left")

		lines, err := run()
		Expect(err).To(MatchError(ErrInvalidConfig))
		Expect(lines).To(ConsistOf(
			ContainSubstring(config.ViperParity),
			ContainSubstring(config.ViperTXPin),
		))
		Expect(lines).NotTo(ContainElement("ok"))
	})
})

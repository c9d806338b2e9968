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

package describe

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/x/ansi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/detiber/modemterm/dte"
)

func render(cfg dte.TerminalConfig, width int) []string {
	GinkgoHelper()

	var buf bytes.Buffer
	Expect(Render(&buf, cfg, width)).To(Succeed())
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

var _ = Describe("Render", func() {
	It("should mark line settings unused for an external binding", func() {
		cfg := dte.DefaultConfig()
		cfg.Binding = dte.External{Device: "/dev/modem"}

		lines := render(cfg, 0)

		Expect(lines[0]).To(MatchRegexp(`^resource\s+external$`))
		Expect(lines[1]).To(MatchRegexp(`^device\s+/dev/modem$`))
		Expect(lines).To(ContainElement(MatchRegexp(`^framing\s+8N1 \(unused\)$`)))
		Expect(lines).To(ContainElement(MatchRegexp(`^event queue\s+30$`)))
	})

	It("should describe the line of a UART binding", func() {
		cfg := dte.DefaultConfig()
		cfg.Binding = dte.UART{Device: "/dev/ttyS1"}
		cfg.Line.Parity = dte.ParityEven
		cfg.Line.StopBits = dte.StopBits2
		cfg.Line.FlowControl = dte.FlowControlHardware
		cfg.Line.EventQueueDepth = dte.EventQueueDisabled

		lines := render(cfg, 0)

		Expect(lines[0]).To(MatchRegexp(`^resource\s+uart$`))
		Expect(lines).To(ContainElement(MatchRegexp(`^framing\s+8E2$`)))
		Expect(lines).To(ContainElement(MatchRegexp(`^flow control\s+hardware$`)))
		Expect(lines).To(ContainElement(MatchRegexp(`^pins rts/cts\s+27/23$`)))
		Expect(lines).To(ContainElement(MatchRegexp(`^event queue\s+disabled$`)))
	})

	It("should render unused pins and an unset binding", func() {
		cfg := dte.DefaultConfig()
		cfg.Binding = nil
		cfg.Line.RTSPin = nil

		lines := render(cfg, 0)

		Expect(lines[0]).To(MatchRegexp(`^resource\s+unset$`))
		Expect(lines).To(ContainElement(MatchRegexp(`^pins rts/cts\s+none/23 \(unused\)$`)))
	})

	It("should align values in one column", func() {
		lines := render(dte.DefaultConfig(), 0)

		Expect(lines[0]).To(MatchRegexp(`^resource\s+uart$`))
		Expect(lines[1]).To(MatchRegexp(`^device\s+/null$`))

		column := strings.Index(lines[0], "uart")
		Expect(column).To(BeNumerically(">", 0))
		for _, line := range lines[1:] {
			Expect(line[column-2 : column]).To(Equal("  "), line)
			Expect(line[column]).NotTo(Equal(byte(' ')), line)
		}
	})

	It("should truncate lines to the requested width", func() {
		cfg := dte.DefaultConfig()
		cfg.Binding = dte.External{Device: "/dev/" + strings.Repeat("modem", 20)}

		for _, line := range render(cfg, 40) {
			Expect(ansi.StringWidth(line)).To(BeNumerically("<=", 40))
		}
		Expect(render(cfg, 40)[1]).To(HaveSuffix(ellipsis))
	})
})

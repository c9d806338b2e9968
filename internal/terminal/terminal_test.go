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
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/creack/pty"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/detiber/modemterm/dte"
)

// openPTY returns the controlling side of a pseudo terminal and the device
// path of its other end, which stands in for a modem's character device.
func openPTY() (*os.File, string) {
	GinkgoHelper()

	pseudoTTY, virtualTTY, err := pty.Open()
	Expect(err).NotTo(HaveOccurred())

	DeferCleanup(func() {
		_ = pseudoTTY.Close()
		_ = virtualTTY.Close()
	})

	return pseudoTTY, virtualTTY.Name()
}

func collect(events <-chan Event) func() string {
	var sb strings.Builder
	return func() string {
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return sb.String()
				}
				if ev.Type == EventData {
					sb.Write(ev.Data)
				}
			default:
				return sb.String()
			}
		}
	}
}

var _ = Describe("Terminal", func() {
	var (
		logger *log.Logger
		cfg    dte.TerminalConfig
	)

	BeforeEach(func() {
		logger = log.New(GinkgoWriter, "[test] ", log.LstdFlags)
		cfg = dte.DefaultConfig()
	})

	It("should refuse an invalid configuration before opening anything", func() {
		cfg.BufferSize = 0

		t, err := Open(context.Background(), cfg, logger)
		Expect(err).To(MatchError(ErrInvalidConfig))
		Expect(t).To(BeNil())
	})

	It("should refuse unsupported flow control on a UART", func() {
		_, name := openPTY()
		cfg.Binding = dte.UART{Device: name}
		cfg.Line.FlowControl = dte.FlowControlHardware

		_, err := Open(context.Background(), cfg, logger)
		Expect(err).To(MatchError(ErrFlowControlUnsupported))
	})

	It("should report a missing external device", func() {
		cfg.Binding = dte.External{Device: "/nonexistent/modem0"}

		_, err := Open(context.Background(), cfg, logger)
		Expect(err).To(MatchError(os.ErrNotExist))
	})

	Context("with an external binding", func() {
		var (
			pseudoTTY *os.File
			name      string
		)

		BeforeEach(func() {
			pseudoTTY, name = openPTY()
			cfg.Binding = dte.External{Device: name}
		})

		It("should refuse a negative event queue depth", func() {
			cfg.Line.EventQueueDepth = -5

			t, err := Open(context.Background(), cfg, logger)
			Expect(err).To(MatchError(ErrInvalidConfig))
			Expect(t).To(BeNil())
		})

		It("should publish received data on the event queue", func() {
			t, err := Open(context.Background(), cfg, logger)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(t.Close)

			Expect(t.DeviceName()).To(Equal(name))
			Expect(t.Events()).NotTo(BeNil())

			_, err = pseudoTTY.Write([]byte("OK\n"))
			Expect(err).NotTo(HaveOccurred())

			Eventually(collect(t.Events())).WithTimeout(2 * time.Second).Should(ContainSubstring("OK"))
		})

		It("should refuse direct reads while the event queue is enabled", func() {
			t, err := Open(context.Background(), cfg, logger)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(t.Close)

			_, err = t.Read(make([]byte, 8))
			Expect(err).To(MatchError(ErrEventQueueEnabled))
		})

		It("should not allocate an event queue when the depth is zero", func() {
			cfg.Line.EventQueueDepth = dte.EventQueueDisabled

			t, err := Open(context.Background(), cfg, logger)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(t.Close)

			Expect(t.Events()).To(BeNil())
			Expect(t.Config().Line.EventQueueDepth).To(Equal(dte.EventQueueDepth(0)))

			_, err = pseudoTTY.Write([]byte("RING\n"))
			Expect(err).NotTo(HaveOccurred())

			buf := make([]byte, 64)
			n, err := t.Read(buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(buf[:n])).To(ContainSubstring("RING"))
		})

		It("should write to the device", func() {
			t, err := Open(context.Background(), cfg, logger)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(t.Close)

			_, err = t.Write([]byte("AT\n"))
			Expect(err).NotTo(HaveOccurred())

			buf := make([]byte, 64)
			n, err := pseudoTTY.Read(buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(buf[:n])).To(ContainSubstring("AT"))
		})

		It("should drop and report chunks when the queue is full", func() {
			cfg.Line.EventQueueDepth = 1

			t, err := Open(context.Background(), cfg, logger)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(t.Close)

			_, err = pseudoTTY.Write([]byte("a\nb\nc\nd\n"))
			Expect(err).NotTo(HaveOccurred())

			Eventually(t.Dropped).WithTimeout(2 * time.Second).Should(BeNumerically(">=", 3))

			var ev Event
			Expect(t.Events()).To(Receive(&ev))
			Expect(ev.Type).To(Equal(EventData))
			Expect(string(ev.Data)).To(ContainSubstring("a"))

			_, err = pseudoTTY.Write([]byte("e\n"))
			Expect(err).NotTo(HaveOccurred())

			Eventually(t.Events()).WithTimeout(2 * time.Second).Should(Receive(&ev))
			Expect(ev.Type).To(Equal(EventOverflow))
			Expect(ev.Dropped).To(BeNumerically(">=", 3))
		})

		It("should report a read failure after the queued data and overflow notice", func() {
			cfg.Line.EventQueueDepth = 1

			t, err := Open(context.Background(), cfg, logger)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(t.Close)

			_, err = pseudoTTY.Write([]byte("a\n"))
			Expect(err).NotTo(HaveOccurred())
			Eventually(func() int { return len(t.Events()) }).WithTimeout(2 * time.Second).Should(Equal(1))

			_, err = pseudoTTY.Write([]byte("b\n"))
			Expect(err).NotTo(HaveOccurred())
			Eventually(t.Dropped).WithTimeout(2 * time.Second).Should(BeNumerically("==", 1))

			// Hanging up the controlling side fails the next read
			Expect(pseudoTTY.Close()).To(Succeed())

			var ev Event
			Eventually(t.Events()).WithTimeout(2 * time.Second).Should(Receive(&ev))
			Expect(ev.Type).To(Equal(EventData))
			Expect(string(ev.Data)).To(ContainSubstring("a"))

			Eventually(t.Events()).WithTimeout(2 * time.Second).Should(Receive(&ev))
			Expect(ev.Type).To(Equal(EventOverflow))
			Expect(ev.Dropped).To(BeNumerically("==", 1))

			Eventually(t.Events()).WithTimeout(2 * time.Second).Should(Receive(&ev))
			Expect(ev.Type).To(Equal(EventError))
			Expect(ev.Err).To(HaveOccurred())

			Eventually(t.Events()).WithTimeout(2 * time.Second).Should(BeClosed())
		})

		It("should close when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())

			t, err := Open(ctx, cfg, logger)
			Expect(err).NotTo(HaveOccurred())

			cancel()

			Eventually(t.Events()).WithTimeout(2 * time.Second).Should(BeClosed())
			Expect(t.Close()).To(Succeed())
		})

		It("should be safe to close twice", func() {
			t, err := Open(context.Background(), cfg, logger)
			Expect(err).NotTo(HaveOccurred())

			Expect(t.Close()).To(Succeed())
			Expect(t.Close()).To(Succeed())
			Eventually(t.Events()).Should(BeClosed())
		})
	})

	Context("with a UART binding", func() {
		It("should create the interface from the line parameters", func() {
			pseudoTTY, name := openPTY()
			cfg.Binding = dte.UART{Device: name}

			t, err := Open(context.Background(), cfg, logger)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(t.Close)

			_, err = pseudoTTY.Write([]byte("hello"))
			Expect(err).NotTo(HaveOccurred())

			Eventually(collect(t.Events())).WithTimeout(2 * time.Second).Should(ContainSubstring("hello"))
		})
	})
})

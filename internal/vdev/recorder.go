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

package vdev

import (
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"github.com/detiber/modemterm/internal/vdev/config"
)

var ErrResponseWithoutRequest = errors.New("received response without preceding request")

// Recorder turns an observed session with a real modem into a reply table
// a Device can serve. Each recorded request collects the data received until
// the next request; the delay is the time to the first byte.
type Recorder struct {
	logger *log.Logger
	now    func() time.Time

	mu          sync.Mutex
	replies     config.Replies
	current     *config.Reply
	requestTime time.Time
}

// NewRecorder creates an empty Recorder.
func NewRecorder(logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.New(os.Stdout, "[recorder] ", log.LstdFlags)
	}

	return &Recorder{
		logger:  logger,
		now:     time.Now,
		replies: config.Replies{},
	}
}

// RecordRequest starts a new exchange for line, finishing the previous one.
func (r *Recorder) RecordRequest(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Printf("Recording request: %q", line)

	r.finish()
	r.current = &config.Reply{Line: line}
	r.requestTime = r.now()
}

// RecordResponse appends data to the current exchange. Data received before
// any request is logged and discarded.
func (r *Recorder) RecordResponse(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		r.logger.Printf("Warning: %v: %q", ErrResponseWithoutRequest, data)
		return
	}

	r.logger.Printf("Recording response chunk: %q", data)

	if r.current.Data == "" {
		r.current.Delay = r.now().Sub(r.requestTime)
	}
	r.current.Data += string(data)
}

// Replies finishes the current exchange and returns the recorded table.
func (r *Recorder) Replies() config.Replies {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finish()

	return append(config.Replies(nil), r.replies...)
}

// finish must be called with mu held.
func (r *Recorder) finish() {
	if r.current == nil {
		return
	}

	if r.current.Data == "" {
		r.logger.Printf("No response recorded for request: %q", r.current.Line)
	} else {
		r.replies.Set(*r.current)
	}
	r.current = nil
}

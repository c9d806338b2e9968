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

// Package dte describes how a modem's data terminal equipment is wired to its
// transport: which character device backs it, the serial line settings, and
// the buffer and task hints the runtime reserves to service it.
//
// The package holds configuration only. It opens nothing and validates
// nothing; range and consistency checks belong to the routine that consumes
// a TerminalConfig and must happen before any resource is created.
//
// Typical use starts from the default profile and overrides single fields:
//
//	cfg := dte.DefaultConfig()
//	cfg.Binding = dte.UART{Device: "/dev/ttyUSB0"}
//	cfg.Line.FlowControl = dte.FlowControlHardware
package dte

// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

// Package logging provides the Logger capability handed to every autosbctl
// component. There is no package-level logger: the CLI builds one Console
// per run and injects it.
package logging

import "sync"

// Level names a log severity.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelVerbose Level = "verbose"
	LevelSuccess Level = "success"
	LevelPlain   Level = "plain"
)

// Logger is the logging capability used across autosbctl.
type Logger interface {
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
	// Verbosef lines are only shown when verbose output is enabled.
	Verbosef(format string, v ...any)
	Successf(format string, v ...any)
	// Printf writes an unlevelled line.
	Printf(format string, v ...any)
}

// Discard is a Logger that drops everything.
var Discard Logger = discard{}

type discard struct{}

func (discard) Infof(string, ...any)    {}
func (discard) Warnf(string, ...any)    {}
func (discard) Errorf(string, ...any)   {}
func (discard) Verbosef(string, ...any) {}
func (discard) Successf(string, ...any) {}
func (discard) Printf(string, ...any)   {}

// Entry is one recorded log line.
type Entry struct {
	Level   Level
	Message string
}

// Recorder keeps every line in memory. It is used by tests to assert on what
// a component reported.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) add(l Level, format string, v []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: l, Message: sprintf(format, v)})
}

func (r *Recorder) Infof(format string, v ...any)    { r.add(LevelInfo, format, v) }
func (r *Recorder) Warnf(format string, v ...any)    { r.add(LevelWarn, format, v) }
func (r *Recorder) Errorf(format string, v ...any)   { r.add(LevelError, format, v) }
func (r *Recorder) Verbosef(format string, v ...any) { r.add(LevelVerbose, format, v) }
func (r *Recorder) Successf(format string, v ...any) { r.add(LevelSuccess, format, v) }
func (r *Recorder) Printf(format string, v ...any)   { r.add(LevelPlain, format, v) }

// Entries returns a copy of the recorded lines.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the messages logged at level l, in order.
func (r *Recorder) Messages(l Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == l {
			out = append(out, e.Message)
		}
	}
	return out
}

// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

// Package command runs the external tools autosbctl drives (sbctl, rsync)
// behind a narrow Runner interface so callers can be exercised with a fake
// runner instead of spawning processes.
package command

import (
	"context"
	"fmt"
	"strings"
)

// Result is the outcome of one external command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited with status zero.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Runner runs an argv and waits for it to finish. A non-nil error means the
// command could not be run at all; a command that ran and exited non-zero is
// reported through Result.ExitCode with a nil error.
type Runner interface {
	Run(ctx context.Context, argv []string) (Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, argv []string) (Result, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, argv []string) (Result, error) { return f(ctx, argv) }

// ExitError describes a command that ran but exited non-zero.
type ExitError struct {
	Argv   []string
	Result Result
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", Join(e.Argv), e.Result.ExitCode)
	if s := strings.TrimSpace(e.Result.Stderr); s != "" {
		msg += ": " + firstLine(s)
	}
	return msg
}

// Check turns a finished command into an error: the run error if there is
// one, an *ExitError if the exit status was non-zero, nil otherwise.
func Check(argv []string, res Result, err error) error {
	if err != nil {
		return fmt.Errorf("run %s: %w", Join(argv), err)
	}
	if !res.Success() {
		return &ExitError{Argv: argv, Result: res}
	}
	return nil
}

// Join renders argv for log lines.
func Join(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\n'\"") {
			quoted[i] = fmt.Sprintf("%q", a)
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}

// With returns a copy of base with extra appended. base is never modified.
func With(base []string, extra ...string) []string {
	argv := make([]string, 0, len(base)+len(extra))
	argv = append(argv, base...)
	return append(argv, extra...)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"

	"github.com/toeirei/autosbctl/internal/logging"
)

// ErrEmptyCommand is returned when a runner is handed an empty argv.
var ErrEmptyCommand = errors.New("empty command")

// Exec runs commands on the host. Output is captured into the Result and,
// when Stdout/Stderr are set, also streamed to them so the operator sees the
// external tool's own report as it runs.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
	// Dir is the working directory of the child; empty means inherit.
	Dir string
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, ErrEmptyCommand
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.Dir
	cmd.Stdout = tee(&stdout, e.Stdout)
	cmd.Stderr = tee(&stderr, e.Stderr)

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	case ctx.Err() != nil:
		res.ExitCode = -1
		return res, ctx.Err()
	default:
		res.ExitCode = -1
		return res, err
	}
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// Privileged prefixes every argv with an escalation command such as sudo.
// Escalation happens per command; there is no session caching.
type Privileged struct {
	Runner Runner
	Prefix []string
}

// Run implements Runner.
func (p *Privileged) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, ErrEmptyCommand
	}
	return p.Runner.Run(ctx, With(p.Prefix, argv...))
}

// DryRun logs each command instead of running it and reports success.
type DryRun struct {
	Log logging.Logger
}

// Run implements Runner.
func (d *DryRun) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, ErrEmptyCommand
	}
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, err
	}
	d.Log.Infof("dry-run: %s", Join(argv))
	return Result{}, nil
}

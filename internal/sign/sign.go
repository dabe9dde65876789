// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sign finds EFI binaries and hands each one to the external
// signing tool. The tool does all cryptographic work; this package only
// decides which paths it sees and keeps count.
package sign

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/toeirei/autosbctl/internal/command"
	"github.com/toeirei/autosbctl/internal/logging"
)

// Target is a path believed to be a signable EFI binary. Its existence is
// checked again right before signing.
type Target struct {
	Path string
}

// Outcome is the record of one signer invocation.
type Outcome struct {
	Path   string
	Result command.Result
	Err    error
}

// Result summarises a signing batch. Signed counts invocations of the
// external signer regardless of their exit status; Failed counts the subset
// that exited non-zero or could not be started.
type Result struct {
	Signed   int
	Failed   int
	Skipped  int
	Outcomes []Outcome
}

// Add folds o into r.
func (r *Result) Add(o Result) {
	r.Signed += o.Signed
	r.Failed += o.Failed
	r.Skipped += o.Skipped
	r.Outcomes = append(r.Outcomes, o.Outcomes...)
}

// Err combines the errors of every failed invocation, or nil.
func (r Result) Err() error {
	var err error
	for _, o := range r.Outcomes {
		err = multierr.Append(err, o.Err)
	}
	return err
}

// Options configures a Signer.
type Options struct {
	// Command is the signer argv; the target path is appended to it.
	Command []string
	// Extension is the file suffix Discover matches, including the dot.
	Extension string
	// CaseSensitive makes Extension matching exact. By default
	// BOOTX64.EFI matches ".efi".
	CaseSensitive bool
}

// DefaultOptions returns the sbctl defaults.
func DefaultOptions() Options {
	return Options{
		Command:   []string{"sbctl", "sign"},
		Extension: ".efi",
	}
}

// Signer invokes the external signer on EFI binaries, one process per file,
// sequentially.
type Signer struct {
	runner command.Runner
	log    logging.Logger
	opts   Options
}

// New returns a Signer. Zero-valued option fields take their defaults.
func New(r command.Runner, log logging.Logger, opts Options) *Signer {
	def := DefaultOptions()
	if len(opts.Command) == 0 {
		opts.Command = def.Command
	}
	if opts.Extension == "" {
		opts.Extension = def.Extension
	}
	if log == nil {
		log = logging.Discard
	}
	return &Signer{runner: r, log: log, opts: opts}
}

// SignIfExists signs path when it exists. ok reports whether the signer was
// invoked. The returned error is non-nil only when ctx is done; signer
// failures are carried in the Outcome.
func (s *Signer) SignIfExists(ctx context.Context, path string) (out Outcome, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return Outcome{Path: path}, false, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			s.log.Verbosef("could not find %s", path)
		} else {
			s.log.Verbosef("skipping %s: %v", path, statErr)
		}
		return Outcome{Path: path}, false, nil
	}
	s.log.Verbosef("found %s. will sign:", path)
	return s.run(ctx, path)
}

func (s *Signer) run(ctx context.Context, path string) (Outcome, bool, error) {
	argv := command.With(s.opts.Command, path)
	res, runErr := s.runner.Run(ctx, argv)
	out := Outcome{Path: path, Result: res}
	if ctxErr := ctx.Err(); ctxErr != nil {
		out.Err = fmt.Errorf("sign %s: %w", path, ctxErr)
		return out, true, ctxErr
	}
	if err := command.Check(argv, res, runErr); err != nil {
		out.Err = fmt.Errorf("sign %s: %w", path, err)
		s.log.Errorf("%v", out.Err)
	}
	return out, true, nil
}

func (r *Result) record(out Outcome, ok bool) {
	if !ok {
		r.Skipped++
		return
	}
	r.Signed++
	if out.Err != nil {
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, out)
}

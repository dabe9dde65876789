// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

// Package keys copies the signer's key bundle between the working directory
// and the system location the signer reads it from. The bundle is opaque
// here; it is copied wholesale by an external sync tool.
package keys

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toeirei/autosbctl/internal/command"
	"github.com/toeirei/autosbctl/internal/logging"
)

// ErrMissingKeySource is returned by Import when there is no local bundle.
var ErrMissingKeySource = errors.New("local key bundle not found")

// Status codes reported for import and export.
const (
	StatusOK             = 0
	StatusSourceNotFound = 1
	StatusCopyFailed     = 2
)

// Status maps an Import or Export error to its status code.
func Status(err error) int {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrMissingKeySource):
		return StatusSourceNotFound
	default:
		return StatusCopyFailed
	}
}

// Options configures a Syncer.
type Options struct {
	// LocalDir is the bundle copy next to the operator, <cwd>/secureboot.
	LocalDir string
	// SystemDir is where the signer keeps its bundle.
	SystemDir string
	// SyncCommand is the recursive copy argv; source and destination are
	// appended.
	SyncCommand []string
	// RemoveCommand deletes LocalDir when the current user cannot, e.g.
	// because a previous privileged export left root-owned files.
	RemoveCommand []string
	// DryRun hands the removal of LocalDir to the runner as RemoveCommand
	// instead of deleting it in-process, so a logging runner leaves the
	// bundle in place.
	DryRun bool
}

// DefaultOptions returns the sbctl layout relative to cwd.
func DefaultOptions(cwd string) Options {
	return Options{
		LocalDir:      filepath.Join(cwd, "secureboot"),
		SystemDir:     "/usr/share/secureboot",
		SyncCommand:   []string{"rsync", "-rvz"},
		RemoveCommand: []string{"rm", "-rf"},
	}
}

// Syncer imports and exports the key bundle.
type Syncer struct {
	runner command.Runner
	log    logging.Logger
	opts   Options
}

// New returns a Syncer. LocalDir and SystemDir are required.
func New(r command.Runner, log logging.Logger, opts Options) (*Syncer, error) {
	if strings.TrimSpace(opts.LocalDir) == "" || strings.TrimSpace(opts.SystemDir) == "" {
		return nil, errors.New("keys: local and system directories are required")
	}
	if len(opts.SyncCommand) == 0 {
		opts.SyncCommand = []string{"rsync", "-rvz"}
	}
	if len(opts.RemoveCommand) == 0 {
		opts.RemoveCommand = []string{"rm", "-rf"}
	}
	if log == nil {
		log = logging.Discard
	}
	return &Syncer{runner: r, log: log, opts: opts}, nil
}

// Import copies LocalDir onto SystemDir, overwriting what is there. With no
// local bundle nothing is copied and ErrMissingKeySource is returned.
func (s *Syncer) Import(ctx context.Context) error {
	s.log.Infof("import: copying %s to %s", s.opts.LocalDir, s.opts.SystemDir)

	fi, err := os.Stat(s.opts.LocalDir)
	if err != nil || !fi.IsDir() {
		s.log.Errorf("Could not find local key directory %s. Export it on your source system with '--export' and copy it here first.", s.opts.LocalDir)
		return fmt.Errorf("import %s: %w", s.opts.LocalDir, ErrMissingKeySource)
	}

	s.log.Printf("found %s, copying", s.opts.LocalDir)
	if err := s.sync(ctx, s.opts.LocalDir, s.opts.SystemDir); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	s.log.Successf("finished copying %s", s.opts.LocalDir)
	return nil
}

// Export replaces LocalDir with a fresh copy of SystemDir. The local copy is
// removed first, whether or not SystemDir exists; a failed copy is reported.
func (s *Syncer) Export(ctx context.Context) error {
	s.log.Infof("export: copying %s to %s", s.opts.SystemDir, s.opts.LocalDir)

	if err := s.removeLocal(ctx); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := s.sync(ctx, s.opts.SystemDir, s.opts.LocalDir); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	s.log.Successf("finished copying %s", s.opts.SystemDir)
	return nil
}

func (s *Syncer) removeLocal(ctx context.Context) error {
	dir := filepath.Clean(s.opts.LocalDir)
	if dir == "/" || dir == "." {
		return fmt.Errorf("refusing to remove %q", s.opts.LocalDir)
	}
	if s.opts.DryRun {
		return s.removeWithCommand(ctx, dir)
	}
	err := os.RemoveAll(dir)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	s.log.Verbosef("cannot remove %s as the current user, retrying with %s", dir, command.Join(s.opts.RemoveCommand))
	return s.removeWithCommand(ctx, dir)
}

func (s *Syncer) removeWithCommand(ctx context.Context, dir string) error {
	argv := command.With(s.opts.RemoveCommand, dir)
	res, err := s.runner.Run(ctx, argv)
	return command.Check(argv, res, err)
}

// sync copies the contents of src into dst. Both get a trailing slash so
// rsync merges src into dst instead of nesting it as dst/<base(src)>.
func (s *Syncer) sync(ctx context.Context, src, dst string) error {
	argv := command.With(s.opts.SyncCommand, dirArg(src), dirArg(dst))
	res, err := s.runner.Run(ctx, argv)
	return command.Check(argv, res, err)
}

func dirArg(p string) string {
	return strings.TrimRight(p, "/") + "/"
}

// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package sign

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirectory is the directory signed when no target is given:
// EFI under the working directory.
func DefaultDirectory() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, "EFI"), nil
}

// Discover walks root and returns every file whose name ends in the
// configured extension, in lexical order. Dot-prefixed entries are neither
// matched nor descended into and symlinked directories are not followed.
// A missing root yields no targets and no error.
func (s *Signer) Discover(root string) ([]Target, error) {
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Warnf("%s does not exist", root)
			return nil, nil
		}
		return nil, err
	}

	var targets []Target
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.log.Warnf("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if s.matches(d.Name()) && signable(path, d) {
			targets = append(targets, Target{Path: path})
		}
		return nil
	})
	return targets, err
}

// signable accepts regular files and symlinks that resolve to one.
func signable(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func (s *Signer) matches(name string) bool {
	ext := s.opts.Extension
	if len(name) < len(ext) {
		return false
	}
	suffix := name[len(name)-len(ext):]
	if s.opts.CaseSensitive {
		return suffix == ext
	}
	return strings.EqualFold(suffix, ext)
}

// SignDirectory signs every binary Discover finds under root. An empty or
// missing directory is not an error: the result is zero and a warning is
// logged.
func (s *Signer) SignDirectory(ctx context.Context, root string) (Result, error) {
	s.log.Infof("Signing all binaries in '%s', recursively", root)

	var res Result
	targets, err := s.Discover(root)
	if err != nil {
		return res, err
	}
	for _, t := range targets {
		out, ok, err := s.SignIfExists(ctx, t.Path)
		res.record(out, ok)
		if err != nil {
			return res, err
		}
	}

	if res.Signed > 0 {
		s.log.Successf("finished signing %d file(s) in %s", res.Signed, root)
	} else {
		s.log.Warnf("did not find any files to sign!")
	}
	return res, nil
}

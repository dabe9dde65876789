// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/toeirei/autosbctl/internal/command"
)

// Runner is an in-memory command.Runner used by tests to avoid spawning
// real processes. It records every argv it is handed.
type Runner struct {
	mu    sync.Mutex
	calls [][]string

	// Results maps argv[0] (after any prefix) to the result returned for it.
	// Commands not listed succeed with an empty Result.
	Results map[string]command.Result
	// Err, when set, is returned for every call.
	Err error
	// OnRun is called before the result is returned.
	OnRun func(argv []string)
}

// Run implements command.Runner.
func (r *Runner) Run(_ context.Context, argv []string) (command.Result, error) {
	r.mu.Lock()
	cp := append([]string(nil), argv...)
	r.calls = append(r.calls, cp)
	onRun := r.OnRun
	r.mu.Unlock()

	if onRun != nil {
		onRun(cp)
	}
	if r.Err != nil {
		return command.Result{ExitCode: -1}, r.Err
	}
	if len(argv) > 0 {
		if res, ok := r.Results[argv[0]]; ok {
			return res, nil
		}
	}
	return command.Result{}, nil
}

// Calls returns every recorded argv in order.
func (r *Runner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// LastArgs returns the final element of each recorded argv, which for
// `sbctl sign <path>` is the signed path.
func (r *Runner) LastArgs() []string {
	var out []string
	for _, c := range r.Calls() {
		if len(c) > 0 {
			out = append(out, c[len(c)-1])
		}
	}
	return out
}

// Touch creates an empty file at root/rel, creating parents as needed, and
// returns its full path.
func Touch(t testing.TB, root, rel string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

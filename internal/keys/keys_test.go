// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package keys

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/autosbctl/internal/command"
	"github.com/toeirei/autosbctl/internal/logging"
	"github.com/toeirei/autosbctl/internal/testutil"
)

type fixture struct {
	syncer *Syncer
	runner *testutil.Runner
	log    *logging.Recorder
	opts   Options
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cwd := t.TempDir()
	opts := DefaultOptions(cwd)
	opts.SystemDir = filepath.Join(t.TempDir(), "usr", "share", "secureboot")
	r := &testutil.Runner{}
	rec := &logging.Recorder{}
	s, err := New(r, rec, opts)
	require.NoError(t, err)
	return fixture{syncer: s, runner: r, log: rec, opts: opts}
}

func TestImport_MissingSource(t *testing.T) {
	f := newFixture(t)

	err := f.syncer.Import(context.Background())
	assert.ErrorIs(t, err, ErrMissingKeySource)
	assert.Equal(t, StatusSourceNotFound, Status(err))
	assert.Empty(t, f.runner.Calls(), "no copy without a source")
	assert.Len(t, f.log.Messages(logging.LevelError), 1)
	_, statErr := os.Stat(f.opts.SystemDir)
	assert.True(t, os.IsNotExist(statErr), "system location must not be touched")
}

func TestImport_SourceIsAFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.opts.LocalDir, []byte("x"), 0o600))

	err := f.syncer.Import(context.Background())
	assert.ErrorIs(t, err, ErrMissingKeySource)
	assert.Empty(t, f.runner.Calls())
}

func TestImport_CopiesOnce(t *testing.T) {
	f := newFixture(t)
	testutil.Touch(t, f.opts.LocalDir, "keys/db/db.key")

	err := f.syncer.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusOK, Status(err))
	assert.Equal(t, [][]string{
		{"rsync", "-rvz", f.opts.LocalDir + "/", f.opts.SystemDir + "/"},
	}, f.runner.Calls())
	assert.Len(t, f.log.Messages(logging.LevelSuccess), 1)
}

func TestImport_CopyFailureSurfaced(t *testing.T) {
	f := newFixture(t)
	testutil.Touch(t, f.opts.LocalDir, "keys/PK/PK.key")
	f.runner.Results = map[string]command.Result{"rsync": {ExitCode: 23}}

	err := f.syncer.Import(context.Background())
	var exitErr *command.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 23, exitErr.Result.ExitCode)
	assert.Equal(t, StatusCopyFailed, Status(err))
}

func TestExport_RemovesLocalCopyBeforeCopying(t *testing.T) {
	f := newFixture(t)
	stale := testutil.Touch(t, f.opts.LocalDir, "keys/KEK/KEK.key")

	var existedAtCopy bool
	f.runner.OnRun = func([]string) {
		_, err := os.Stat(stale)
		existedAtCopy = err == nil
	}

	require.NoError(t, f.syncer.Export(context.Background()))
	assert.False(t, existedAtCopy, "local copy must be gone before the copy runs")
	assert.Equal(t, [][]string{
		{"rsync", "-rvz", f.opts.SystemDir + "/", f.opts.LocalDir + "/"},
	}, f.runner.Calls())
}

func TestExport_RemovesEvenWhenSystemBundleMissing(t *testing.T) {
	f := newFixture(t)
	stale := testutil.Touch(t, f.opts.LocalDir, "keys/db/db.pem")
	f.runner.Results = map[string]command.Result{"rsync": {ExitCode: 23, Stderr: "change_dir failed: No such file or directory"}}

	err := f.syncer.Export(context.Background())
	assert.Error(t, err, "a failed copy is reported")
	_, statErr := os.Stat(stale)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExport_NoLocalCopyYet(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncer.Export(context.Background()))
	assert.Len(t, f.runner.Calls(), 1)
}

func TestExport_DryRunHandsRemovalToRunner(t *testing.T) {
	cwd := t.TempDir()
	opts := DefaultOptions(cwd)
	opts.DryRun = true
	key := testutil.Touch(t, cwd, "secureboot/keys/db/db.key")
	r := &testutil.Runner{}
	s, err := New(r, logging.Discard, opts)
	require.NoError(t, err)

	require.NoError(t, s.Export(context.Background()))

	assert.Equal(t, [][]string{
		{"rm", "-rf", opts.LocalDir},
		{"rsync", "-rvz", "/usr/share/secureboot/", opts.LocalDir + "/"},
	}, r.Calls())
	assert.FileExists(t, key)
}

func TestNew_RequiresDirectories(t *testing.T) {
	_, err := New(&testutil.Runner{}, nil, Options{LocalDir: "secureboot"})
	assert.Error(t, err)
}

func TestRemoveLocal_RefusesRoot(t *testing.T) {
	s, err := New(&testutil.Runner{}, nil, Options{LocalDir: "/", SystemDir: "/usr/share/secureboot"})
	require.NoError(t, err)
	assert.Error(t, s.Export(context.Background()))
}

func TestDirArg(t *testing.T) {
	assert.Equal(t, "/usr/share/secureboot/", dirArg("/usr/share/secureboot"))
	assert.Equal(t, "/usr/share/secureboot/", dirArg("/usr/share/secureboot//"))
}

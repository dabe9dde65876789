// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package sign

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/autosbctl/internal/command"
	"github.com/toeirei/autosbctl/internal/logging"
	"github.com/toeirei/autosbctl/internal/testutil"
)

func newTestSigner(opts Options) (*Signer, *testutil.Runner, *logging.Recorder) {
	r := &testutil.Runner{}
	rec := &logging.Recorder{}
	return New(r, rec, opts), r, rec
}

func TestSignDirectory_EmptyDirectory(t *testing.T) {
	s, r, rec := newTestSigner(Options{})
	root := filepath.Join(t.TempDir(), "EFI")
	require.NoError(t, os.Mkdir(root, 0o755))

	res, err := s.SignDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Signed)
	assert.Empty(t, r.Calls(), "no external command for an empty directory")
	assert.Contains(t, rec.Messages(logging.LevelWarn), "did not find any files to sign!")
}

func TestSignDirectory_MissingDirectory(t *testing.T) {
	s, r, rec := newTestSigner(Options{})

	res, err := s.SignDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Signed)
	assert.Empty(t, r.Calls())
	assert.NotEmpty(t, rec.Messages(logging.LevelWarn))
}

func TestSignDirectory_UppercaseBootloader(t *testing.T) {
	s, r, _ := newTestSigner(Options{})
	root := filepath.Join(t.TempDir(), "EFI")
	want := testutil.Touch(t, root, "BOOT/BOOTX64.EFI")

	res, err := s.SignDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Signed)
	assert.Equal(t, [][]string{{"sbctl", "sign", want}}, r.Calls())
}

func TestSignDirectory_SignsEachMatchExactlyOnce(t *testing.T) {
	s, r, rec := newTestSigner(Options{})
	root := t.TempDir()
	want := []string{
		testutil.Touch(t, root, "BOOT/BOOTX64.EFI"),
		testutil.Touch(t, root, "Linux/linux-linux.efi"),
		testutil.Touch(t, root, "systemd/systemd-bootx64.efi"),
		testutil.Touch(t, root, "top.efi"),
	}
	testutil.Touch(t, root, "BOOT/grub.cfg")
	testutil.Touch(t, root, "BOOT/efi")
	testutil.Touch(t, root, ".hidden/skipped.efi")
	testutil.Touch(t, root, "BOOT/.dotfile.efi")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.efi"), 0o755))

	linkedFile := filepath.Join(root, "Linux", "linked.efi")
	require.NoError(t, os.Symlink(want[1], linkedFile))
	want = append(want, linkedFile)
	require.NoError(t, os.Symlink(filepath.Join(root, "systemd"), filepath.Join(root, "linked-dir.efi")))
	require.NoError(t, os.Symlink(filepath.Join(root, "absent.efi"), filepath.Join(root, "dangling.efi")))

	res, err := s.SignDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, len(want), res.Signed)
	assert.ElementsMatch(t, want, r.LastArgs())
	assert.Len(t, r.Calls(), len(want))
	assert.Len(t, rec.Messages(logging.LevelSuccess), 1)
}

func TestSignDirectory_CaseSensitive(t *testing.T) {
	s, r, _ := newTestSigner(Options{CaseSensitive: true})
	root := t.TempDir()
	testutil.Touch(t, root, "BOOT/BOOTX64.EFI")
	lower := testutil.Touch(t, root, "BOOT/BOOTx64.efi")

	res, err := s.SignDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Signed)
	assert.Equal(t, []string{lower}, r.LastArgs())
}

func TestSignDirectory_NonZeroExitStillCounts(t *testing.T) {
	s, r, rec := newTestSigner(Options{})
	r.Results = map[string]command.Result{"sbctl": {ExitCode: 1, Stderr: "file is not a PE binary"}}
	root := t.TempDir()
	testutil.Touch(t, root, "a.efi")
	testutil.Touch(t, root, "b.efi")

	res, err := s.SignDirectory(context.Background(), root)
	require.NoError(t, err, "per-file failures never abort the batch")
	assert.Equal(t, 2, res.Signed)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, rec.Messages(logging.LevelError), 2)

	var exitErr *command.ExitError
	assert.True(t, errors.As(res.Err(), &exitErr))
}

func TestSignDirectory_StopsOnCancel(t *testing.T) {
	s, r, _ := newTestSigner(Options{})
	root := t.TempDir()
	testutil.Touch(t, root, "a.efi")
	testutil.Touch(t, root, "b.efi")

	ctx, cancel := context.WithCancel(context.Background())
	r.OnRun = func([]string) { cancel() }

	res, err := s.SignDirectory(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Signed)
	assert.Len(t, r.Calls(), 1)
}

func TestSignIfExists(t *testing.T) {
	s, r, rec := newTestSigner(Options{Command: []string{"signer", "--sign"}})
	dir := t.TempDir()
	present := testutil.Touch(t, dir, "present.efi")

	_, ok, err := s.SignIfExists(context.Background(), filepath.Join(dir, "absent.efi"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, r.Calls())
	assert.Len(t, rec.Messages(logging.LevelVerbose), 1)

	out, ok, err := s.SignIfExists(context.Background(), present)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, out.Err)
	assert.Equal(t, [][]string{{"signer", "--sign", present}}, r.Calls())
}

func TestSignFixedPaths_MissingAreSkipped(t *testing.T) {
	s, r, rec := newTestSigner(Options{})
	root := t.TempDir()
	testutil.Touch(t, root, "efi/EFI/BOOT/BOOTX64.EFI")

	paths := Rebase(root, DefaultFixedPaths())
	res, err := s.SignFixedPaths(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Signed)
	assert.Equal(t, []string{filepath.Join(root, "efi/EFI/BOOT/BOOTX64.EFI")}, r.LastArgs())
	assert.LessOrEqual(t, res.Signed, len(paths))
	assert.Empty(t, rec.Messages(logging.LevelWarn), "missing fixed paths are only logged at verbose level")
	assert.Empty(t, rec.Messages(logging.LevelError))
}

func TestSignFixedPaths_NothingPresent(t *testing.T) {
	s, r, _ := newTestSigner(Options{})

	res, err := s.SignFixedPaths(context.Background(), Rebase(t.TempDir(), DefaultFixedPaths()))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Signed)
	assert.Equal(t, len(DefaultFixedPaths()), res.Skipped)
	assert.Empty(t, r.Calls())
}

func TestSignFixedPaths_SameFileSignedOnce(t *testing.T) {
	s, r, _ := newTestSigner(Options{})
	root := t.TempDir()
	target := testutil.Touch(t, root, "efi/EFI/BOOT/BOOTX64.EFI")
	alias := filepath.Join(root, "efi/EFI/BOOT/BOOTx64.efi")
	require.NoError(t, os.Link(target, alias))

	res, err := s.SignFixedPaths(context.Background(), []string{target, alias})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Signed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{target}, r.LastArgs())
}

func TestDefaultFixedPaths_WellFormed(t *testing.T) {
	paths := DefaultFixedPaths()
	seen := map[string]bool{}
	for _, p := range paths {
		assert.True(t, filepath.IsAbs(p), p)
		assert.Equal(t, filepath.Clean(p), p)
		assert.False(t, seen[p], "duplicate %s", p)
		seen[p] = true
	}
	assert.Contains(t, paths, "/efi/EFI/systemd/systemd-bootx64.efi")
	assert.Contains(t, paths, "/boot/efi/EFI/BOOT/BOOTX64.EFI")
}

func TestRebase(t *testing.T) {
	in := []string{"/efi/EFI/BOOT/BOOTX64.EFI"}
	assert.Equal(t, in, Rebase("", in))
	assert.Equal(t, in, Rebase("/", in))
	assert.Equal(t, []string{"/mnt/efi/EFI/BOOT/BOOTX64.EFI"}, Rebase("/mnt/", in))
}

func TestResult_Add(t *testing.T) {
	var total Result
	total.Add(Result{Signed: 2, Failed: 1, Outcomes: []Outcome{{Path: "a", Err: errors.New("x")}, {Path: "b"}}})
	total.Add(Result{Signed: 1, Skipped: 4, Outcomes: []Outcome{{Path: "c"}}})

	assert.Equal(t, 3, total.Signed)
	assert.Equal(t, 1, total.Failed)
	assert.Equal(t, 4, total.Skipped)
	assert.Len(t, total.Outcomes, 3)
	assert.EqualError(t, total.Err(), "x")
}

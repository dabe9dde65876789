// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package sign

import (
	"context"
	"os"
	"path/filepath"
)

// DefaultFixedPaths lists the well-known boot files signed by
// SignFixedPaths. Distributions mount the ESP at /efi or /boot/efi, so both
// layouts are listed.
func DefaultFixedPaths() []string {
	return []string{
		"/boot/vmlinuz-linux",
		"/efi/EFI/BOOT/BOOTX64.EFI",
		"/efi/EFI/BOOT/BOOTx64.efi",
		"/efi/EFI/Linux/linux-linux.efi",
		"/efi/EFI/arch/fwupdx64.efi",
		"/efi/EFI/systemd/systemd-bootx64.efi",
		"/boot/efi/EFI/BOOT/BOOTX64.EFI",
		"/boot/efi/EFI/BOOT/BOOTx64.efi",
		"/boot/efi/EFI/Linux/linux-linux.efi",
		"/boot/efi/EFI/arch/fwupdx64.efi",
		"/boot/efi/EFI/systemd/systemd-bootx64.efi",
	}
}

// Rebase joins every path onto root, for signing an offline system mounted
// elsewhere. A root of "" or "/" returns the paths unchanged.
func Rebase(root string, paths []string) []string {
	out := make([]string, len(paths))
	if root == "" || filepath.Clean(root) == "/" {
		copy(out, paths)
		return out
	}
	for i, p := range paths {
		out[i] = filepath.Join(root, p)
	}
	return out
}

// SignFixedPaths signs each listed path that exists and silently skips the
// rest. Entries naming a file already signed in this batch (BOOTX64.EFI and
// BOOTx64.efi on a case-insensitive ESP) are skipped too.
func (s *Signer) SignFixedPaths(ctx context.Context, paths []string) (Result, error) {
	s.log.Infof("signing Linux boot files")

	var (
		res  Result
		seen []seenFile
	)
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil {
			if dup := sameAsAny(fi, seen); dup != "" {
				s.log.Verbosef("%s is the same file as %s, already signed", p, dup)
				res.Skipped++
				continue
			}
			seen = append(seen, seenFile{path: p, info: fi})
		}
		out, ok, err := s.SignIfExists(ctx, p)
		res.record(out, ok)
		if err != nil {
			return res, err
		}
	}

	if res.Signed > 0 {
		s.log.Successf("finished signing %d Linux boot file(s)", res.Signed)
	}
	return res, nil
}

type seenFile struct {
	path string
	info os.FileInfo
}

func sameAsAny(fi os.FileInfo, seen []seenFile) string {
	for _, f := range seen {
		if os.SameFile(fi, f.info) {
			return f.path
		}
	}
	return ""
}

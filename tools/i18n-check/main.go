// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-check reports message IDs used in the source that the primary locale
// lacks, IDs a secondary locale lacks, and IDs no code refers to.
//
// Run it from the repository root:
//
//	go run ./tools/i18n-check
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
)

// usedRe matches catalog lookups such as a.msg.T("cli.starting", ...).
var usedRe = regexp.MustCompile(`\.T\("([a-z_]+(?:\.[a-z_]+)+)"`)

type report struct {
	// Undefined lists IDs the code uses but the primary locale lacks.
	Undefined []string
	// Missing lists, per secondary locale file, IDs present in the primary
	// locale but absent there.
	Missing map[string][]string
	// Orphaned lists primary locale IDs nothing refers to.
	Orphaned []string
}

func (r report) failed() bool {
	if len(r.Undefined) > 0 {
		return true
	}
	for _, ids := range r.Missing {
		if len(ids) > 0 {
			return true
		}
	}
	return false
}

func main() {
	r, err := check(".", localesDir)
	if err != nil {
		log.Fatal("i18n check failed", "err", err)
	}
	for _, id := range r.Undefined {
		log.Error("undefined message", "id", id)
	}
	files := make([]string, 0, len(r.Missing))
	for f := range r.Missing {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		for _, id := range r.Missing[f] {
			log.Error("missing translation", "file", f, "id", id)
		}
	}
	for _, id := range r.Orphaned {
		log.Warn("orphaned message", "id", id)
	}
	if r.failed() {
		os.Exit(1)
	}
	log.Info("locales are consistent")
}

func check(root, locales string) (report, error) {
	used, err := findUsedIDs(root)
	if err != nil {
		return report{}, err
	}
	primary, err := loadIDs(filepath.Join(root, locales, primaryLocale))
	if err != nil {
		return report{}, fmt.Errorf("primary locale: %w", err)
	}

	r := report{
		Undefined: difference(used, primary),
		Orphaned:  difference(primary, used),
		Missing:   map[string][]string{},
	}

	files, err := filepath.Glob(filepath.Join(root, locales, "*.yaml"))
	if err != nil {
		return report{}, err
	}
	for _, f := range files {
		if filepath.Base(f) == primaryLocale {
			continue
		}
		ids, err := loadIDs(f)
		if err != nil {
			return report{}, fmt.Errorf("%s: %w", f, err)
		}
		r.Missing[filepath.Base(f)] = difference(primary, ids)
	}
	return r, nil
}

// findUsedIDs scans non-test Go files below root, skipping tools/ and
// directories starting with a dot or underscore.
func findUsedIDs(root string) (map[string]struct{}, error) {
	ids := map[string]struct{}{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range usedRe.FindAllStringSubmatch(string(content), -1) {
			ids[m[1]] = struct{}{}
		}
		return nil
	})
	return ids, err
}

// loadIDs reads a nested locale file and returns its leaf IDs in dotted form.
func loadIDs(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	ids := map[string]struct{}{}
	flatten("", data, ids)
	return ids, nil
}

func flatten(prefix string, node any, ids map[string]struct{}) {
	m, ok := node.(map[string]any)
	if !ok {
		if prefix != "" {
			ids[prefix] = struct{}{}
		}
		return
	}
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		flatten(k, v, ids)
	}
}

// difference returns the sorted keys of a that are not in b.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

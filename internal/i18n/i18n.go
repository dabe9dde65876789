// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

// Package i18n translates the command-line front end's messages. It loads
// the embedded YAML locale files into a go-i18n bundle.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Catalog translates message IDs for one language.
type Catalog struct {
	lang      string
	localizer *i18n.Localizer
}

// New parses every embedded locale and returns a Catalog for lang. Unknown
// languages fall back to English. It panics if the embedded locales are
// unreadable.
func New(lang string) *Catalog {
	bundle, err := loadBundle(localeFS, "locales")
	if err != nil {
		panic(fmt.Sprintf("i18n: %v", err))
	}
	return &Catalog{lang: lang, localizer: i18n.NewLocalizer(bundle, lang, language.English.String())}
}

// loadBundle parses every .yaml file in dir. The file name is the language
// tag.
func loadBundle(fsys fs.FS, dir string) (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	names, err := localeNames(fsys, dir)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(dir, name+".yaml"))
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(data, name+".yaml"); err != nil {
			return nil, fmt.Errorf("parse %s.yaml: %w", name, err)
		}
	}
	return bundle, nil
}

func localeNames(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	var out []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok && !e.IsDir() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Lang returns the language the Catalog was created for.
func (c *Catalog) Lang() string { return c.lang }

// T translates messageID and formats it with args fmt-style. A missing ID
// is returned as-is.
func (c *Catalog) T(messageID string, args ...any) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil || msg == "" {
		msg = messageID
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Available lists the embedded locales by language tag.
func Available() []string {
	names, err := localeNames(localeFS, "locales")
	if err != nil {
		panic(fmt.Sprintf("i18n: %v", err))
	}
	return names
}

// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	clog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// successLevel sits between info and warn so success lines survive the
// default info threshold.
const successLevel clog.Level = 2

// ColorMode selects when output is coloured.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// Options configures a Console.
type Options struct {
	Verbose bool
	Color   ColorMode
	Prefix  string
}

// Console is the terminal Logger backed by charmbracelet/log.
type Console struct {
	l *clog.Logger
}

// New returns a Console writing to w.
func New(w io.Writer, opts Options) *Console {
	l := clog.NewWithOptions(w, clog.Options{
		Level:           clog.InfoLevel,
		Prefix:          opts.Prefix,
		ReportTimestamp: false,
	})
	if opts.Verbose {
		l.SetLevel(clog.DebugLevel)
	}
	l.SetStyles(styles())
	if !useColor(w, opts.Color) {
		l.SetColorProfile(termenv.Ascii)
	} else if opts.Color == ColorAlways {
		l.SetColorProfile(termenv.ANSI256)
	}
	return &Console{l: l}
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func styles() *clog.Styles {
	s := clog.DefaultStyles()
	badge := func(label, color string) lipgloss.Style {
		return lipgloss.NewStyle().SetString(label).Bold(true).MaxWidth(4).Foreground(lipgloss.Color(color))
	}
	s.Levels[clog.DebugLevel] = badge("VERB", "8")
	s.Levels[clog.InfoLevel] = badge("INFO", "12")
	s.Levels[successLevel] = badge("DONE", "10")
	s.Levels[clog.WarnLevel] = badge("WARN", "11")
	s.Levels[clog.ErrorLevel] = badge("ERRO", "9")
	return s
}

func (c *Console) Infof(format string, v ...any)    { c.l.Info(sprintf(format, v)) }
func (c *Console) Warnf(format string, v ...any)    { c.l.Warn(sprintf(format, v)) }
func (c *Console) Errorf(format string, v ...any)   { c.l.Error(sprintf(format, v)) }
func (c *Console) Verbosef(format string, v ...any) { c.l.Debug(sprintf(format, v)) }
func (c *Console) Successf(format string, v ...any) { c.l.Log(successLevel, sprintf(format, v)) }
func (c *Console) Printf(format string, v ...any)   { c.l.Print(sprintf(format, v)) }

func sprintf(format string, v []any) string {
	if len(v) == 0 {
		return format
	}
	return fmt.Sprintf(format, v...)
}

// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/toeirei/autosbctl/internal/command"
	"github.com/toeirei/autosbctl/internal/config"
	"github.com/toeirei/autosbctl/internal/efi"
	"github.com/toeirei/autosbctl/internal/i18n"
	"github.com/toeirei/autosbctl/internal/keys"
	"github.com/toeirei/autosbctl/internal/logging"
	"github.com/toeirei/autosbctl/internal/sign"
)

// app holds everything one invocation needs, built once from the loaded
// configuration.
type app struct {
	cfg    config.Config
	cwd    string
	log    logging.Logger
	msg    *i18n.Catalog
	runner command.Runner
	vars   efi.VarReader
	signer *sign.Signer
	syncer *keys.Syncer
}

func newApp(cmd *cobra.Command, d deps, cfgFile string) (*app, error) {
	var configPath *string
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
		}
		configPath = &cfgFile
	}

	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(sign.DefaultFixedPaths()), configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}

	color, err := logging.ParseColorMode(cfg.Color)
	if err != nil {
		return nil, err
	}
	log := logging.New(cmd.OutOrStdout(), logging.Options{Verbose: cfg.Verbose, Color: color})

	a := &app{
		cfg:    cfg,
		cwd:    cwd,
		log:    log,
		msg:    i18n.New(cfg.Language),
		runner: buildRunner(cmd, d, cfg, log),
		vars:   d.vars,
	}
	if a.vars == nil {
		a.vars = efi.VarFS{}
	}

	a.signer = sign.New(a.runner, log, sign.Options{
		Command:       cfg.Signer.Sign,
		Extension:     cfg.Sign.Extension,
		CaseSensitive: cfg.Sign.CaseSensitive,
	})
	a.syncer, err = keys.New(a.runner, log, keys.Options{
		LocalDir:      a.abs(cfg.Keys.LocalDir),
		SystemDir:     cfg.Keys.SystemDir,
		SyncCommand:   cfg.Keys.Sync,
		RemoveCommand: cfg.Keys.Remove,
		DryRun:        cfg.DryRun,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// buildRunner layers the configured behaviour over the host runner: dry-run
// replaces execution entirely, otherwise commands get the privilege prefix.
func buildRunner(cmd *cobra.Command, d deps, cfg config.Config, log logging.Logger) command.Runner {
	if cfg.DryRun {
		return &command.DryRun{Log: log}
	}
	base := d.runner
	if base == nil {
		base = &command.Exec{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
	}
	if cfg.NoSudo || len(cfg.Privilege.Command) == 0 {
		return base
	}
	return &command.Privileged{Runner: base, Prefix: cfg.Privilege.Command}
}

func (a *app) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(a.cwd, p)
}

// target is the Directory Signer root: --target, or EFI under the working
// directory.
func (a *app) target() string {
	if a.cfg.Target == "" {
		return filepath.Join(a.cwd, "EFI")
	}
	return a.abs(a.cfg.Target)
}

func (a *app) fixedPaths() []string {
	return sign.Rebase(a.cfg.Root, a.cfg.Sign.FixedPaths)
}

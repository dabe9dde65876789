// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"

	"github.com/toeirei/autosbctl/internal/command"
	"github.com/toeirei/autosbctl/internal/efi"
	"github.com/toeirei/autosbctl/internal/sign"
)

// runAll is the root command: import, status, sign, verify, export.
func (a *app) runAll(ctx context.Context) error {
	a.summary()

	if a.cfg.Import {
		if err := a.syncer.Import(ctx); err != nil {
			a.log.Errorf("%s", a.msg.T("cli.import_aborted"))
			return err
		}
	}

	a.status(ctx)

	var total sign.Result
	if a.cfg.Local {
		res, err := a.signer.SignDirectory(ctx, a.target())
		total.Add(res)
		if err != nil {
			return err
		}
	}
	if a.cfg.Linux {
		res, err := a.signer.SignFixedPaths(ctx, a.fixedPaths())
		total.Add(res)
		if err != nil {
			return err
		}
	}

	if total.Signed > 0 {
		a.log.Successf("%s", a.msg.T("cli.finished_signing", total.Signed))
		a.verify(ctx)
	} else {
		a.log.Verbosef("%s", a.msg.T("cli.nothing_signed"))
	}

	if a.cfg.Export {
		if err := a.syncer.Export(ctx); err != nil {
			return err
		}
	}
	return a.finish(total)
}

// summary prints one line per step the run will perform.
func (a *app) summary() {
	var lines []string
	if a.cfg.Import {
		lines = append(lines, a.msg.T("cli.option_import", a.abs(a.cfg.Keys.LocalDir)))
	}
	if a.cfg.Linux {
		lines = append(lines, a.msg.T("cli.option_linux"))
	}
	if a.cfg.Local {
		lines = append(lines, a.msg.T("cli.option_local", a.target()))
	}
	if a.cfg.Export {
		lines = append(lines, a.msg.T("cli.option_export", a.cfg.Keys.SystemDir, a.abs(a.cfg.Keys.LocalDir)))
	}
	if len(lines) == 0 {
		lines = append(lines, a.msg.T("cli.option_none"))
	}
	if a.cfg.DryRun {
		lines = append(lines, a.msg.T("cli.option_dry_run"))
	}

	a.log.Printf("%s", a.msg.T("cli.starting"))
	for _, l := range lines {
		a.log.Printf("  - %s", l)
	}
}

// status prints the firmware's Secure Boot state and the signer's own
// status report. Neither failing stops the run.
func (a *app) status(ctx context.Context) {
	st, err := efi.ReadState(a.vars)
	if err != nil {
		a.log.Warnf("%s", a.msg.T("cli.firmware_unavailable", err))
	} else {
		a.log.Infof("%s", a.msg.T("cli.firmware_state"))
		for _, l := range st.Lines() {
			a.log.Printf("  %s", l)
		}
	}

	if err := a.report(ctx, a.cfg.Signer.Status); err != nil {
		a.log.Warnf("%s", a.msg.T("cli.status_failed", err))
	}
}

func (a *app) verify(ctx context.Context) {
	if err := a.report(ctx, a.cfg.Signer.Verify); err != nil {
		a.log.Warnf("%s", a.msg.T("cli.verify_failed", err))
	}
}

func (a *app) report(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	res, err := a.runner.Run(ctx, argv)
	return command.Check(argv, res, err)
}

// finish reports failed signer invocations. They only fail the run with
// --strict.
func (a *app) finish(total sign.Result) error {
	if total.Failed == 0 {
		return nil
	}
	msg := a.msg.T("cli.failed_signing", total.Failed, total.Signed)
	if a.cfg.Strict {
		return fmt.Errorf("%s: %w", msg, total.Err())
	}
	a.log.Warnf("%s", msg)
	return nil
}

// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, its flags and the subcommands.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toeirei/autosbctl/internal/command"
	"github.com/toeirei/autosbctl/internal/efi"
)

// deps are the process-level collaborators. Tests replace them with fakes.
type deps struct {
	runner command.Runner
	vars   efi.VarReader
}

type cli struct {
	deps    deps
	cfgFile string
	app     *app
}

// Execute runs the CLI entrypoint and returns the process exit code.
// SIGINT and SIGTERM cancel the running external command and stop the
// batch.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		return ExitCode(err)
	}
	return 0
}

// ExitCode maps an error returned by a command to the process exit status:
// 0 on success, 1 for any error, a missing key bundle included.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// NewRootCmd returns the autosbctl root command wired to the host.
func NewRootCmd() *cobra.Command {
	return newRootCmd(deps{})
}

func newRootCmd(d deps) *cobra.Command {
	c := &cli{deps: d}

	cmd := &cobra.Command{
		Use:   "autosbctl",
		Short: "Sign EFI boot files with sbctl and back up its keys.",
		Long: `autosbctl runs "sbctl sign" over every EFI binary below a directory
(default ./EFI) and over the well-known boot files under /efi and /boot/efi.
It can import the signing keys from ./secureboot before signing and export
them back afterwards.

Running without a subcommand performs the whole sequence: import, status,
sign, verify, export.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.runAll(cmd.Context())
		},
	}

	cmd.Version = currentVersion(nil).String()

	pf := cmd.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/autosbctl/autosbctl.yaml or ./autosbctl.yaml)")
	pf.BoolP("verbose", "v", false, "Show verbose output")
	pf.BoolP("dry-run", "n", false, "Log external commands instead of running them")
	pf.Bool("no-sudo", false, "Do not prefix external commands with the privilege command")
	pf.Bool("strict", false, "Exit non-zero if any signer invocation failed")
	pf.String("root", "/", "Root the fixed boot file list is resolved against")
	pf.String("color", "auto", `Colour output ("auto", "always", "never")`)
	pf.String("lang", "en", `Message language ("en", "de")`)

	f := cmd.Flags()
	addToggle(f, "local", "", "skip-local", true, "Sign the local EFI directory")
	addToggle(f, "linux", "L", "skip-linux", true, "(Re)sign the Linux boot files under /efi and /boot/efi")
	f.StringP("target", "T", "", "Target directory to recursively search for EFI files to sign (default ./EFI)")
	addToggle(f, "export", "E", "no-export", false, "Copy the system key bundle to ./secureboot after signing")
	addToggle(f, "import", "I", "no-import", false, "Copy ./secureboot to the system key bundle before signing")

	cmd.AddCommand(
		c.signCmd(),
		c.signLinuxCmd(),
		c.keysCmd(),
		c.statusCmd(),
		c.configCmd(),
		versionCmd(),
	)
	return cmd
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, c.deps, c.cfgFile)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

// noSetup replaces the root's PersistentPreRunE for commands that need no
// configuration.
func noSetup(*cobra.Command, []string) error { return nil }

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print version",
		Args:              cobra.NoArgs,
		PersistentPreRunE: noSetup,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), currentVersion(nil))
		},
	}
}

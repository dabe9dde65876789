// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/spf13/cobra"

	"github.com/toeirei/autosbctl/internal/config"
	"github.com/toeirei/autosbctl/internal/sign"
)

// signCmd signs every EFI binary below the given directories.
func (c *cli) signCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign [dir...]",
		Short: "Sign every EFI binary below one or more directories",
		Long: `Recursively signs every file ending in the configured extension (.efi,
case-insensitive by default) below each directory. Without arguments the
EFI directory in the working directory is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			dirs := args
			if len(dirs) == 0 {
				dirs = []string{a.target()}
			}
			var total sign.Result
			for _, d := range dirs {
				res, err := a.signer.SignDirectory(cmd.Context(), a.abs(d))
				total.Add(res)
				if err != nil {
					return err
				}
			}
			if len(dirs) > 1 && total.Signed > 0 {
				a.log.Successf("%s", a.msg.T("cli.finished_signing", total.Signed))
			}
			return a.finish(total)
		},
	}
}

// signLinuxCmd signs the fixed list of well-known boot files.
func (c *cli) signLinuxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign-linux",
		Short: "Sign the well-known Linux boot files under /efi and /boot/efi",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			res, err := a.signer.SignFixedPaths(cmd.Context(), a.fixedPaths())
			if err != nil {
				return err
			}
			return a.finish(res)
		},
	}
}

func (c *cli) keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Copy the signing key bundle to or from the working directory",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "import",
			Short: "Copy ./secureboot onto the system key bundle",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.app.syncer.Import(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "export",
			Short: "Replace ./secureboot with a copy of the system key bundle",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.app.syncer.Export(cmd.Context())
			},
		},
	)
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the firmware Secure Boot state and the signer's status report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.app.status(cmd.Context())
			return nil
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the autosbctl configuration file",
	}
	var system bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			path, err := config.WriteConfigFile(&a.cfg, system)
			if err != nil {
				return err
			}
			a.log.Successf("%s", a.msg.T("cli.config_written", path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&system, "system", false, "Write the system-wide file instead of the user one")
	cmd.AddCommand(initCmd)
	return cmd
}

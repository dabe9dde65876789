// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for autosbctl.
//
// Usage:
//
//	go run . [flags]
//	./autosbctl [flags]
//
// This signs the local EFI directory and the Linux boot files with sbctl.
// See --help for options.
package main

import (
	"os"

	"github.com/toeirei/autosbctl/ui/cli"
)

func main() {
	os.Exit(cli.Execute())
}

// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the autosbctl command line using Cobra. It loads
// configuration, wires the runner, signer and key syncer together and
// sequences them. Signing and copying logic lives in internal/sign and
// internal/keys; this package stays thin.
package cli

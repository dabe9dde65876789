// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

// Package efi reads the Secure Boot state variables from efivarfs.
package efi

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/u-root/u-root/pkg/efivarfs"
)

// GlobalVariable is the EFI_GLOBAL_VARIABLE vendor GUID the Secure Boot
// mode variables live under.
var GlobalVariable = uuid.MustParse("8be4df61-93ca-11d2-aa0d-00e098032b8c")

// Variable names read by ReadState.
const (
	VarSecureBoot   = "SecureBoot"
	VarSetupMode    = "SetupMode"
	VarAuditMode    = "AuditMode"
	VarDeployedMode = "DeployedMode"
)

// VarReader reads the raw data of one EFI variable.
type VarReader interface {
	ReadVar(guid uuid.UUID, name string) ([]byte, error)
}

// VarFS reads variables through u-root's efivarfs package.
type VarFS struct{}

// ReadVar implements VarReader.
func (VarFS) ReadVar(guid uuid.UUID, name string) ([]byte, error) {
	e, err := efivarfs.New()
	if err != nil {
		return nil, fmt.Errorf("efivarfs: %w", err)
	}
	desc := efivarfs.VariableDescriptor{Name: name, GUID: guid}
	_, b, err := efivarfs.ReadVariable(e, desc)
	return b, err
}

// State is the firmware's Secure Boot configuration.
type State struct {
	SecureBoot   bool
	SetupMode    bool
	AuditMode    bool
	DeployedMode bool
	// Errors holds the read error of every variable that could not be
	// read, keyed by variable name. AuditMode and DeployedMode are absent
	// on firmware older than UEFI 2.5.
	Errors map[string]error
}

// ReadState reads all four mode variables. It fails only if none of them
// can be read, which usually means the system was not booted via UEFI.
func ReadState(r VarReader) (State, error) {
	st := State{Errors: map[string]error{}}
	for _, v := range []struct {
		name string
		dst  *bool
	}{
		{VarSecureBoot, &st.SecureBoot},
		{VarSetupMode, &st.SetupMode},
		{VarAuditMode, &st.AuditMode},
		{VarDeployedMode, &st.DeployedMode},
	} {
		b, err := r.ReadVar(GlobalVariable, v.name)
		if err == nil {
			*v.dst, err = parseBool(b)
		}
		if err != nil {
			st.Errors[v.name] = fmt.Errorf("%s: %w", v.name, err)
		}
	}
	if len(st.Errors) == 4 {
		return st, fmt.Errorf("read Secure Boot state: %w", st.Errors[VarSecureBoot])
	}
	return st, nil
}

func parseBool(b []byte) (bool, error) {
	if len(b) != 1 {
		return false, fmt.Errorf("unexpected length: %d", len(b))
	}
	if b[0] != 0 && b[0] != 1 {
		return false, fmt.Errorf("unexpected value: %d", b[0])
	}
	return b[0] == 1, nil
}

// Lines renders the state for the status report.
func (s State) Lines() []string {
	show := func(name string, v bool) string {
		if err, ok := s.Errors[name]; ok {
			return fmt.Sprintf("%-13s unknown (%v)", name+":", err)
		}
		return fmt.Sprintf("%-13s %v", name+":", v)
	}
	return []string{
		show(VarSecureBoot, s.SecureBoot),
		show(VarSetupMode, s.SetupMode),
		show(VarAuditMode, s.AuditMode),
		show(VarDeployedMode, s.DeployedMode),
	}
}

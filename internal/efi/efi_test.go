// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package efi

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVars map[string][]byte

func (f fakeVars) ReadVar(guid uuid.UUID, name string) ([]byte, error) {
	if guid != GlobalVariable {
		return nil, errors.New("wrong vendor guid")
	}
	b, ok := f[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return b, nil
}

func TestReadState_UserMode(t *testing.T) {
	st, err := ReadState(fakeVars{
		VarSecureBoot:   {1},
		VarSetupMode:    {0},
		VarAuditMode:    {0},
		VarDeployedMode: {1},
	})
	require.NoError(t, err)
	assert.True(t, st.SecureBoot)
	assert.False(t, st.SetupMode)
	assert.False(t, st.AuditMode)
	assert.True(t, st.DeployedMode)
	assert.Empty(t, st.Errors)
}

func TestReadState_OldFirmware(t *testing.T) {
	st, err := ReadState(fakeVars{VarSecureBoot: {0}, VarSetupMode: {1}})
	require.NoError(t, err)
	assert.True(t, st.SetupMode)
	assert.Len(t, st.Errors, 2)
	assert.ErrorIs(t, st.Errors[VarAuditMode], fs.ErrNotExist)

	lines := st.Lines()
	assert.Equal(t, "SecureBoot:   false", lines[0])
	assert.Contains(t, lines[2], "unknown")
}

func TestReadState_NotBootedViaUEFI(t *testing.T) {
	_, err := ReadState(fakeVars{})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParseBool(t *testing.T) {
	v, err := parseBool([]byte{1})
	require.NoError(t, err)
	assert.True(t, v)

	_, err = parseBool([]byte{2})
	assert.EqualError(t, err, "unexpected value: 2")
	_, err = parseBool([]byte{0, 1})
	assert.EqualError(t, err, "unexpected length: 2")
	_, err = parseBool(nil)
	assert.Error(t, err)
}

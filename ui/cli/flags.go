// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"strconv"

	"github.com/spf13/pflag"
)

// addToggle registers a --name / --negName pair backed by one bool flag.
// The negative form writes through the positive flag, so whichever comes
// last on the command line wins and config loading sees the positive flag
// as changed.
func addToggle(fs *pflag.FlagSet, name, short, negName string, value bool, usage string) {
	fs.BoolP(name, short, value, usage)
	f := fs.VarPF(&negation{fs: fs, name: name}, negName, "", "Opposite of --"+name)
	f.NoOptDefVal = "true"
}

type negation struct {
	fs    *pflag.FlagSet
	name  string
	value bool
}

func (n *negation) String() string { return strconv.FormatBool(n.value) }
func (n *negation) Type() string   { return "bool" }

func (n *negation) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	n.value = v
	return n.fs.Set(n.name, strconv.FormatBool(!v))
}

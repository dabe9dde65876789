// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"runtime/debug"
)

// Set at link time, e.g.
//
//	-ldflags "-X github.com/toeirei/autosbctl/ui/cli.version=v1.0.0"
var (
	version   = "dev"
	gitCommit = "dev" // short commit SHA
	buildDate = ""    // RFC3339
)

const modulePath = "github.com/toeirei/autosbctl"

// buildVersion identifies the running binary.
type buildVersion struct {
	Version string
	Commit  string
	Date    string
}

// currentVersion starts from the link-time values and fills the gaps from
// the module build info. A nil info reads the running binary's.
func currentVersion(info *debug.BuildInfo) buildVersion {
	b := buildVersion{Version: version, Commit: gitCommit, Date: buildDate}
	if info == nil {
		info, _ = debug.ReadBuildInfo()
	}
	if info != nil {
		b.merge(info)
	}
	if b.Version == "dev" && b.Commit != "dev" && b.Commit != "" {
		b.Version = b.Commit
	}
	return b
}

func (b *buildVersion) merge(info *debug.BuildInfo) {
	if released(info.Main.Version) {
		b.Version = info.Main.Version
	}
	if !released(b.Version) {
		// Built as a dependency of another module.
		for _, dep := range info.Deps {
			if dep.Path == modulePath && dep.Version != "" {
				b.Version = dep.Version
				break
			}
		}
	}
	vcs := map[string]*string{"vcs.revision": &b.Commit, "vcs.time": &b.Date}
	for _, s := range info.Settings {
		if dst, ok := vcs[s.Key]; ok && s.Value != "" {
			*dst = s.Value
		}
	}
}

func released(v string) bool {
	return v != "" && v != "dev" && v != "(devel)"
}

// String renders "version (commit) built: date", omitting parts that add
// nothing.
func (b buildVersion) String() string {
	out := b.Version
	if b.Commit != "" && b.Commit != "dev" && b.Commit != b.Version {
		out += " (" + b.Commit + ")"
	}
	if b.Date != "" {
		out += " built: " + b.Date
	}
	return out
}

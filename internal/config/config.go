// Copyright (c) 2026 autosbctl Team
// autosbctl - Secure Boot signing helper
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads autosbctl's configuration from defaults, the
// autosbctl.yaml file, AUTOSBCTL_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the effective configuration of one run. Top-level keys share
// their names with the command-line flags that override them.
type Config struct {
	Local    bool   `mapstructure:"local" yaml:"local"`
	Linux    bool   `mapstructure:"linux" yaml:"linux"`
	Target   string `mapstructure:"target" yaml:"target,omitempty"`
	Import   bool   `mapstructure:"import" yaml:"import"`
	Export   bool   `mapstructure:"export" yaml:"export"`
	Root     string `mapstructure:"root" yaml:"root"`
	Strict   bool   `mapstructure:"strict" yaml:"strict"`
	DryRun   bool   `mapstructure:"dry-run" yaml:"dry-run"`
	NoSudo   bool   `mapstructure:"no-sudo" yaml:"no-sudo"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
	Color    string `mapstructure:"color" yaml:"color"`
	Language string `mapstructure:"lang" yaml:"lang"`

	Signer    SignerConfig    `mapstructure:"signer" yaml:"signer"`
	Privilege PrivilegeConfig `mapstructure:"privilege" yaml:"privilege"`
	Keys      KeysConfig      `mapstructure:"keys" yaml:"keys"`
	Sign      SignConfig      `mapstructure:"sign" yaml:"sign"`
}

// SignerConfig holds the argv of each external signer operation.
type SignerConfig struct {
	Sign   []string `mapstructure:"sign" yaml:"sign"`
	Status []string `mapstructure:"status" yaml:"status"`
	Verify []string `mapstructure:"verify" yaml:"verify"`
}

// PrivilegeConfig is the escalation prefix put in front of every external
// command unless --no-sudo is given.
type PrivilegeConfig struct {
	Command []string `mapstructure:"command" yaml:"command"`
}

// KeysConfig locates the key bundle. A relative LocalDir is resolved
// against the working directory.
type KeysConfig struct {
	LocalDir  string   `mapstructure:"local_dir" yaml:"local_dir"`
	SystemDir string   `mapstructure:"system_dir" yaml:"system_dir"`
	Sync      []string `mapstructure:"sync" yaml:"sync"`
	Remove    []string `mapstructure:"remove" yaml:"remove"`
}

// SignConfig tunes file discovery and the fixed path list.
type SignConfig struct {
	Extension     string   `mapstructure:"extension" yaml:"extension"`
	CaseSensitive bool     `mapstructure:"case_sensitive" yaml:"case_sensitive"`
	FixedPaths    []string `mapstructure:"fixed_paths" yaml:"fixed_paths"`
}

// Defaults returns the built-in configuration values keyed by viper path.
func Defaults(fixedPaths []string) map[string]any {
	return map[string]any{
		"local":   true,
		"linux":   true,
		"target":  "",
		"import":  false,
		"export":  false,
		"root":    "/",
		"strict":  false,
		"dry-run": false,
		"no-sudo": false,
		"verbose": false,
		"color":   "auto",
		"lang":    "en",

		"signer.sign":         []string{"sbctl", "sign"},
		"signer.status":       []string{"sbctl", "status"},
		"signer.verify":       []string{"sbctl", "verify"},
		"privilege.command":   []string{"sudo"},
		"keys.local_dir":      "secureboot",
		"keys.system_dir":     "/usr/share/secureboot",
		"keys.sync":           []string{"rsync", "-rvz"},
		"keys.remove":         []string{"rm", "-rf"},
		"sign.extension":      ".efi",
		"sign.case_sensitive": false,
		"sign.fixed_paths":    fixedPaths,
	}
}

// Validate rejects configurations the run cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Signer.Sign) == 0 {
		errs = append(errs, errors.New("signer.sign must not be empty"))
	}
	if !strings.HasPrefix(c.Sign.Extension, ".") || len(c.Sign.Extension) < 2 {
		errs = append(errs, fmt.Errorf("sign.extension %q must start with a dot", c.Sign.Extension))
	}
	if strings.TrimSpace(c.Keys.LocalDir) == "" || strings.TrimSpace(c.Keys.SystemDir) == "" {
		errs = append(errs, errors.New("keys.local_dir and keys.system_dir are required"))
	}
	if (c.Import || c.Export) && len(c.Keys.Sync) == 0 {
		errs = append(errs, errors.New("keys.sync must not be empty"))
	}
	switch strings.ToLower(c.Color) {
	case "", "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("color %q must be auto, always or never", c.Color))
	}
	return errors.Join(errs...)
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "autosbctl")
		default:
			configDir = "/etc/autosbctl"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "autosbctl")
	}

	return filepath.Join(configDir, "autosbctl.yaml"), nil
}

// LoadConfig layers defaults, config file, environment and the flags of cmd
// into a T. A missing config file is not an error.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("autosbctl")
	v.SetConfigType("yaml")

	// An explicit --config file wins over the search path.
	if configFile != nil && *configFile != "" {
		v.SetConfigFile(*configFile)
	}

	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("autosbctl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// WriteConfigFile writes c as YAML to the user or system config path and
// returns the path written.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

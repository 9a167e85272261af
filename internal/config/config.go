package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	// If SetConfigFile was provided upstream it takes precedence; these
	// paths are fallbacks.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "mdhistory"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "mdhistory"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil && !isMissingConfig(err) {
		return fmt.Errorf("read config: %w", err)
	}

	// Environment variables: MDHISTORY_* (highest among these sources)
	v.SetEnvPrefix("mdhistory")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(v.GetString("default_url")) == "" {
		v.Set("default_url", DefaultURL)
	}
	if strings.TrimSpace(v.GetString("tls.storage_dir")) == "" {
		v.Set("tls.storage_dir", defaultCertDir())
	}
	return nil
}

func isMissingConfig(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

func defaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "mdhistory")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "mdhistory")
}

func defaultCertDir() string {
	return filepath.Join(defaultCacheDir(), "certmagic")
}

// DefaultStateDir resolves $XDG_STATE_HOME/mdhistory or ~/.local/state/mdhistory.
func DefaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "mdhistory")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "mdhistory")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "mdhistory", "config.toml")
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(p string) string {
	if len(p) > 0 && p[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}

// Package cli implements the depexplain command-line interface.
//
// This package provides commands for analyzing requirements.txt files for
// known dependency conflicts, inspecting the conflict rule table, managing
// the explanation cache, and serving the analysis API over HTTP. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - analyze: Check a requirements file for known conflicts and explain them
//   - rules: Inspect the conflict rule table
//   - cache: Manage the explanation cache
//   - serve: Run the analysis HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"os"
	"path/filepath"
)

// appName is the application name used for directories and display.
const appName = "depexplain"

// cacheDir returns the cache directory using XDG standard (~/.cache/depexplain/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the default config file path using XDG standard
// (~/.config/depexplain/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

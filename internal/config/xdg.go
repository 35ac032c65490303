// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultCorpusPath returns the default path of the hymn corpus database.
func DefaultCorpusPath() string {
	return filepath.Join(XDGDataHome(), "hymnal", "corpus.db")
}

// DefaultStatePath returns the default path of the persisted user state.
func DefaultStatePath() string {
	return filepath.Join(XDGDataHome(), "hymnal", "state.json")
}

// DefaultImportCacheDir returns the cache directory for downloaded bundles.
func DefaultImportCacheDir() string {
	return filepath.Join(XDGDataHome(), "hymnal", "bundles")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "hymnal", "config.toml")
}

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds user-tunable settings. Everything has a working default;
// a missing config directory is not an error.
type Config struct {
	// ReadinessTimeout bounds the wait for message containers on
	// conversation pages
	ReadinessTimeout time.Duration
	// ExportHeaderTemplate overrides the export header block (mustache)
	ExportHeaderTemplate string
	// SnapshotDir is the default directory watched for page snapshots
	SnapshotDir string
	// PageURL maps snapshot filename (without extension) to a capture
	// URL, for capture helpers that can't embed one in the HTML
	PageURL map[string]string
}

type tomlConfig struct {
	ReadinessTimeoutSeconds int               `toml:"readiness_timeout_seconds"`
	SnapshotDir             string            `toml:"snapshot_dir"`
	PageURL                 map[string]string `toml:"page_url"`
}

// Load reads config from ~/.config/cortex/
func Load() (*Config, error) {
	cfg := &Config{
		ReadinessTimeout: 5 * time.Second,
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil // Use defaults
	}

	configDir := filepath.Join(home, ".config", "cortex")
	cfg.SnapshotDir = filepath.Join(configDir, "snapshots")

	tomlPath := filepath.Join(configDir, "config.toml")
	templatePath := filepath.Join(configDir, "export_header.mustache")

	if _, err := os.Stat(tomlPath); err == nil {
		var tc tomlConfig
		if _, err := toml.DecodeFile(tomlPath, &tc); err == nil {
			if tc.ReadinessTimeoutSeconds > 0 {
				cfg.ReadinessTimeout = time.Duration(tc.ReadinessTimeoutSeconds) * time.Second
			}
			if tc.SnapshotDir != "" {
				cfg.SnapshotDir = tc.SnapshotDir
			}
			cfg.PageURL = tc.PageURL
		}
	}

	// If custom export template exists, use it
	if data, err := os.ReadFile(templatePath); err == nil {
		cfg.ExportHeaderTemplate = string(data)
	}

	return cfg, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReadinessTimeout != 5*time.Second {
		t.Errorf("ReadinessTimeout = %v, want 5s", cfg.ReadinessTimeout)
	}
	if cfg.ExportHeaderTemplate != "" {
		t.Errorf("ExportHeaderTemplate = %q, want empty (use built-in)", cfg.ExportHeaderTemplate)
	}
	if cfg.SnapshotDir == "" {
		t.Error("SnapshotDir not defaulted")
	}
}

func TestLoad_FromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "cortex")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	toml := `
readiness_timeout_seconds = 12
snapshot_dir = "/tmp/cortex-snapshots"

[page_url]
claude-chats = "https://claude.ai/chats"
`
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(toml), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "export_header.mustache"), []byte("# {{title}}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReadinessTimeout != 12*time.Second {
		t.Errorf("ReadinessTimeout = %v, want 12s", cfg.ReadinessTimeout)
	}
	if cfg.SnapshotDir != "/tmp/cortex-snapshots" {
		t.Errorf("SnapshotDir = %q", cfg.SnapshotDir)
	}
	if cfg.PageURL["claude-chats"] != "https://claude.ai/chats" {
		t.Errorf("PageURL = %v", cfg.PageURL)
	}
	if cfg.ExportHeaderTemplate != "# {{title}}\n" {
		t.Errorf("ExportHeaderTemplate = %q", cfg.ExportHeaderTemplate)
	}
}

func TestLoad_MalformedTOMLFallsBack(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "cortex")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("not = [valid"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReadinessTimeout != 5*time.Second {
		t.Errorf("ReadinessTimeout = %v, want default on malformed config", cfg.ReadinessTimeout)
	}
}

package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadApplicationConfigParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	content := []byte(`
name = "Test App"
start_pos_x = 10
start_pos_y = 20
start_width = 800
start_height = 600
assets_root = "data"
log_level = "debug"
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadApplicationConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Name != "Test App" {
		t.Fatalf("unexpected name %q", cfg.Name)
	}
	if cfg.StartWidth != 800 || cfg.StartHeight != 600 {
		t.Fatalf("unexpected dimensions %dx%d", cfg.StartWidth, cfg.StartHeight)
	}
	if cfg.AssetsRoot != "data" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected assets/log settings %q %q", cfg.AssetsRoot, cfg.LogLevel)
	}
}

func TestLoadApplicationConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	defaults := defaultApplicationConfig()
	if cfg.StartWidth != defaults.StartWidth || cfg.Name != defaults.Name {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadApplicationConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	if err := os.WriteFile(path, []byte(`name = "Partial"`), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadApplicationConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Name != "Partial" {
		t.Fatalf("unexpected name %q", cfg.Name)
	}
	if cfg.StartWidth != defaultApplicationConfig().StartWidth {
		t.Fatalf("missing keys should keep defaults, got width %d", cfg.StartWidth)
	}
}

func TestLoadApplicationConfigRejectsZeroDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	if err := os.WriteFile(path, []byte("start_width = 0\nstart_height = 0\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadApplicationConfig(path); err == nil {
		t.Fatalf("zero window dimensions should be rejected")
	}
}

func TestLoadApplicationConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	if err := os.WriteFile(path, []byte("name = [unclosed"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadApplicationConfig(path); err == nil {
		t.Fatalf("malformed TOML should be rejected")
	}
}

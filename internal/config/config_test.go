package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if cfg.Generation.Images != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[generation]
endpoint = "https://example.test/gen"
images = 2
timeout = "30s"
cfg-scale = 6.5

[selection]
buttons-per-step = 3
secondary-language = true

[presentation]
frames = 10
interval = "50ms"

[output]
dir = "/tmp/out"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if *cfg.Generation.Endpoint != "https://example.test/gen" || *cfg.Generation.Images != 2 || *cfg.Generation.CfgScale != 6.5 {
		t.Fatalf("unexpected generation section %+v", cfg.Generation)
	}
	if *cfg.Selection.ButtonsPerStep != 3 || !*cfg.Selection.Secondary {
		t.Fatalf("unexpected selection section %+v", cfg.Selection)
	}
	if *cfg.Presentation.Frames != 10 || *cfg.Output.Dir != "/tmp/out" {
		t.Fatalf("unexpected presentation/output sections")
	}
	d, ok, err := ParseDuration("generation.timeout", cfg.Generation.Timeout)
	if err != nil || !ok || d != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v %v %v", d, ok, err)
	}
	if cfg.Generation.Steps != nil {
		t.Fatalf("expected unset steps to stay nil")
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[generation]\ntimeout = \"soon\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "generation.timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestParseDurationNil(t *testing.T) {
	if _, ok, err := ParseDuration("x", nil); ok || err != nil {
		t.Fatalf("expected nil duration to be unset")
	}
}

func TestResolveAPIKeyPrecedence(t *testing.T) {
	file := "from-file"
	t.Setenv(APIKeyEnv, "")
	if got := ResolveAPIKey("", &file); got != "from-file" {
		t.Fatalf("expected file key, got %q", got)
	}
	t.Setenv(APIKeyEnv, "from-env")
	if got := ResolveAPIKey("", &file); got != "from-env" {
		t.Fatalf("expected env key, got %q", got)
	}
	if got := ResolveAPIKey("from-flag", &file); got != "from-flag" {
		t.Fatalf("expected flag key, got %q", got)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "pictoword", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "pictoword", "pictoword.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultGalleryDir(); got != filepath.Join("/data", "pictoword", "gallery") {
		t.Fatalf("unexpected gallery dir %q", got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "savetube.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.JanitorInterval != 15*time.Minute {
		t.Errorf("janitor interval = %v", cfg.JanitorInterval)
	}
	if len(cfg.Platforms) != 1 || cfg.Platforms[0].Name != "youtube" {
		t.Errorf("expected the built-in YouTube platform, got %d platforms", len(cfg.Platforms))
	}
}

func TestApplyFile_Overrides(t *testing.T) {
	path := writeConfig(t, `
port = "9090"
store_url = "memory"
log_level = "debug"
janitor_interval = "5m"
`)

	cfg := Load()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.StoreURL != "memory" {
		t.Errorf("store url = %q", cfg.StoreURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.JanitorInterval != 5*time.Minute {
		t.Errorf("janitor interval = %v", cfg.JanitorInterval)
	}
}

func TestApplyFile_ZeroValuesLeaveDefaults(t *testing.T) {
	path := writeConfig(t, `log_level = "warn"`)

	cfg := Load()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("unset field changed: port = %q", cfg.Port)
	}
}

func TestApplyFile_AppendsPlatforms(t *testing.T) {
	path := writeConfig(t, `
[[platform]]
name = "peertube"
hosts = ["peertube.example"]
thumbnail_selector = "a.video-thumbnail"
path_prefixes = ["/w/"]
`)

	cfg := Load()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if len(cfg.Platforms) != 2 {
		t.Fatalf("got %d platforms, want built-in + user", len(cfg.Platforms))
	}
	p := cfg.Platforms[1]
	if p.Name != "peertube" {
		t.Errorf("name = %q", p.Name)
	}
	if !p.MatchesHost("peertube.example") {
		t.Error("user platform does not claim its host")
	}
	if !p.IsVideoLink("/w/abc") {
		t.Error("user platform selectors were not compiled and applied")
	}
}

func TestApplyFile_BadSelector(t *testing.T) {
	path := writeConfig(t, `
[[platform]]
name = "broken"
thumbnail_selector = "a[["
`)

	cfg := Load()
	if err := cfg.ApplyFile(path); err == nil {
		t.Fatal("expected a selector compile error")
	}
}

func TestApplyFile_BadInterval(t *testing.T) {
	path := writeConfig(t, `janitor_interval = "soon"`)

	cfg := Load()
	if err := cfg.ApplyFile(path); err == nil {
		t.Fatal("expected a duration parse error")
	}
}

func TestApplyFile_MissingFile(t *testing.T) {
	cfg := Load()
	if err := cfg.ApplyFile("/does/not/exist.toml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

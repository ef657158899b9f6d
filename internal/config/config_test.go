package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	if err := os.Setenv(key, "8080"); err != nil {
		t.Fatalf("Setenv error: %v", err)
	}
	defer os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestLoadReadsAuthAndPorts(t *testing.T) {
	_ = os.Setenv("APP_PORT", "1234")
	_ = os.Setenv("APP_BASIC_USER", "user")
	_ = os.Setenv("APP_BASIC_PASS", "pass")
	defer func() {
		_ = os.Unsetenv("APP_PORT")
		_ = os.Unsetenv("APP_BASIC_USER")
		_ = os.Unsetenv("APP_BASIC_PASS")
	}()

	cfg := Load()
	if cfg.AppPort != "1234" {
		t.Fatalf("AppPort = %q, want %q", cfg.AppPort, "1234")
	}
	if cfg.BasicAuthUser != "user" || cfg.BasicAuthPass != "pass" {
		t.Fatalf("BasicAuthUser/Pass not loaded correctly: %+v", cfg)
	}
}

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	settings, err := LoadSettings(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadSettings on missing file: %v", err)
	}

	def := DefaultSettings()
	if len(settings.Sources) != len(def.Sources) {
		t.Fatalf("sources = %v, want defaults %v", settings.Sources, def.Sources)
	}
	if settings.MaxLinesPerSection != def.MaxLinesPerSection {
		t.Fatalf("MaxLinesPerSection = %d, want %d", settings.MaxLinesPerSection, def.MaxLinesPerSection)
	}
}

func TestLoadSettingsMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{"subreddits": ["golang"], "max_lines_per_section": 7}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write settings file: %v", err)
	}

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}

	if len(settings.Subreddits) != 1 || settings.Subreddits[0] != "golang" {
		t.Fatalf("subreddits not taken from file: %v", settings.Subreddits)
	}
	if settings.MaxLinesPerSection != 7 {
		t.Fatalf("MaxLinesPerSection = %d, want 7", settings.MaxLinesPerSection)
	}

	// Fields the file left out keep their defaults.
	def := DefaultSettings()
	if len(settings.Feeds) != len(def.Feeds) {
		t.Fatalf("feeds should stay at defaults, got %v", settings.Feeds)
	}
	if settings.ReportWidth != def.ReportWidth {
		t.Fatalf("ReportWidth = %d, want default %d", settings.ReportWidth, def.ReportWidth)
	}
}

func TestLoadSettingsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write settings file: %v", err)
	}

	if _, err := LoadSettings(path); err == nil {
		t.Fatalf("expected error for malformed settings document")
	}
}

func TestSourceEnabled(t *testing.T) {
	s := Settings{Sources: []string{"reddit", "blog"}}
	if !s.SourceEnabled("reddit") {
		t.Fatalf("reddit should be enabled")
	}
	if s.SourceEnabled("producthunt") {
		t.Fatalf("producthunt should be disabled")
	}

	legacy := Settings{Sources: []string{"twitter"}}
	if !legacy.SourceEnabled("x") {
		t.Fatalf("legacy twitter id should enable the x source")
	}
}

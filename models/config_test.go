package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Refresh.Limit != DefaultRefreshLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultRefreshLimit, cfg.Refresh.Limit)
	}

	maxAge, err := cfg.RefreshMaxAge()
	if err != nil {
		t.Fatalf("RefreshMaxAge failed: %v", err)
	}
	if maxAge != DefaultRefreshMaxAge {
		t.Errorf("Expected default max age %v, got %v", DefaultRefreshMaxAge, maxAge)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `db_path: /tmp/test.db
gemini:
  api_key: file-key
  model: gemini-2.0-flash
refresh:
  max_age: 24h
  limit: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Gemini.APIKey != "file-key" {
		t.Errorf("APIKey = %q", cfg.Gemini.APIKey)
	}
	if cfg.Refresh.Limit != 5 {
		t.Errorf("Limit = %d", cfg.Refresh.Limit)
	}

	maxAge, err := cfg.RefreshMaxAge()
	if err != nil {
		t.Fatalf("RefreshMaxAge failed: %v", err)
	}
	if maxAge != 24*time.Hour {
		t.Errorf("Expected 24h, got %v", maxAge)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("gemini:\n  api_key: file-key\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("Expected env override, got %q", cfg.Gemini.APIKey)
	}
}

func TestRefreshMaxAgeInvalid(t *testing.T) {
	cfg := &Config{}
	cfg.Refresh.MaxAge = "soon"

	if _, err := cfg.RefreshMaxAge(); err == nil {
		t.Error("Expected error for unparseable duration")
	}
}

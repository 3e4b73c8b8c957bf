package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "TATOEBANDO_PHRASES", "TATOEBANDO_STATIC", "TATOEBANDO_WATCH", "TATOEBANDO_HISTORY", "TATOEBANDO_LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.Addr() != ":8080" {
		t.Errorf("port = %d, addr = %q", cfg.Port, cfg.Addr())
	}
	if cfg.PhrasesFile != "phrases.json" || cfg.StaticDir != "." || cfg.Watch || cfg.HistoryDB != "harvest.db" || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("TATOEBANDO_PHRASES", "/data/phrases.json")
	t.Setenv("TATOEBANDO_WATCH", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != ":9090" || cfg.PhrasesFile != "/data/phrases.json" || !cfg.Watch {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")
	t.Setenv("TATOEBANDO_WATCH", "maybe")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.Watch {
		t.Errorf("expected defaults for invalid values, got %+v", cfg)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("PORT=7070\nTATOEBANDO_STATIC=public\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TATOEBANDO_STATIC", "override")

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("port = %d, want 7070 from env file", cfg.Port)
	}
	if cfg.StaticDir != "override" {
		t.Errorf("static = %q, environment should win over env file", cfg.StaticDir)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should not be an error: %v", err)
	}
}

package internal

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/supamarker/internal/apperr"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	cfg, err := LoadConfig("", envLookup(map[string]string{
		EnvURL:        "https://abc.supabase.co",
		EnvServiceKey: "secret",
	}))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Supabase.Bucket != DefaultBucket || cfg.Supabase.Table != DefaultTable {
		t.Errorf("defaults not applied: %+v", cfg.Supabase)
	}
	if cfg.App.LogLevel != slog.LevelWarn {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	cfg, err := LoadConfig("", envLookup(map[string]string{
		EnvURL:        "https://abc.supabase.co",
		EnvServiceKey: "secret",
		EnvBucket:     "posts-bucket",
		EnvTable:      "articles",
	}))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Supabase.Bucket != "posts-bucket" || cfg.Supabase.Table != "articles" {
		t.Errorf("supabase = %+v", cfg.Supabase)
	}
}

func TestLoadConfig_MissingURL(t *testing.T) {
	_, err := LoadConfig("", envLookup(map[string]string{EnvServiceKey: "secret"}))
	var ce *apperr.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ConfigError", err)
	}
	if !strings.Contains(err.Error(), EnvURL) {
		t.Errorf("error should name %s: %v", EnvURL, err)
	}
}

func TestLoadConfig_MissingServiceKey(t *testing.T) {
	_, err := LoadConfig("", envLookup(map[string]string{EnvURL: "https://abc.supabase.co"}))
	if !strings.Contains(err.Error(), EnvServiceKey) {
		t.Errorf("error should name %s: %v", EnvServiceKey, err)
	}
}

func TestLoadConfig_InvalidURL(t *testing.T) {
	_, err := LoadConfig("", envLookup(map[string]string{
		EnvURL:        "not a url",
		EnvServiceKey: "secret",
	}))
	var ce *apperr.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ConfigError", err)
	}
}

func TestLoadConfig_FileWinsOverEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	content := "app:\n  log_level: debug\nsupabase:\n  bucket: from-file\n"
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(p, envLookup(map[string]string{
		EnvURL:        "https://abc.supabase.co",
		EnvServiceKey: "secret",
		EnvBucket:     "from-env",
	}))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Supabase.Bucket != "from-file" {
		t.Errorf("bucket = %q, want from-file", cfg.Supabase.Bucket)
	}
	if cfg.Supabase.URL != "https://abc.supabase.co" {
		t.Errorf("url = %q, env value should survive", cfg.Supabase.URL)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
}

func TestLoadConfig_FileValidated(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("supabase:\n  table: t\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(p, envLookup(nil))
	var ce *apperr.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ConfigError", err)
	}
}

func TestSupabaseConfig_BlankBucket(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Supabase.URL = "https://abc.supabase.co"
	cfg.Supabase.ServiceKey = "secret"
	cfg.Supabase.Bucket = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("blank bucket should fail validation")
	}
}

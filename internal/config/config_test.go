package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
log:
  mode: prod
redis:
  addr: localhost:6379
  db: 2
quiz:
  ttl: 30s
play:
  ttl: 1h
openai:
  model: gpt-4o-mini
publish:
  base_url: https://quiz.example.com
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Log.Mode != "prod" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.OpenAI.APIKey != "from-env" {
		t.Fatalf("expected api key from env, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Publish.BaseURL != "https://quiz.example.com" {
		t.Fatalf("unexpected publish base url %q", cfg.Publish.BaseURL)
	}
	if got := TTLDuration(cfg.Play.TTL, time.Minute); got != time.Hour {
		t.Fatalf("expected 1h play ttl, got %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("soon", time.Second); got != time.Second {
		t.Fatalf("expected fallback for bad value, got %v", got)
	}
}

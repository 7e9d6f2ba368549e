package server

import (
	"testing"
	"time"
)

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("WRITE_RATE_LIMIT", "2.5")
	t.Setenv("WRITE_RATE_BURST", "nope")
	t.Setenv("READ_TIMEOUT", "5s")

	cfg, err := LoadConfig([]string{"-db", "/tmp/flag.db"})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("port from env: got %q", cfg.Port)
	}
	if cfg.DBPath != "/tmp/flag.db" {
		t.Errorf("flag should win over env: got %q", cfg.DBPath)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.WriteRateLimit != 2.5 {
		t.Errorf("rate limit: got %v", cfg.WriteRateLimit)
	}
	if cfg.WriteRateBurst != defaultWriteRateBurst {
		t.Errorf("invalid burst should keep default: got %d", cfg.WriteRateBurst)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("read timeout: got %v", cfg.ReadTimeout)
	}
}

func TestLoadConfig_UnknownFlag(t *testing.T) {
	if _, err := LoadConfig([]string{"-nope"}); err == nil {
		t.Fatal("expected an error for an unknown flag")
	}
}

func TestParseAllowedOriginsDefaultsToWildcard(t *testing.T) {
	got := parseAllowedOrigins(" , ")
	if len(got) != 1 || got[0] != "*" {
		t.Fatalf("expected wildcard, got %v", got)
	}
}

func TestParseToken(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"Bearer abc":   "abc",
		"bearer abc":   "abc",
		"abc":          "abc",
		"Basic abc":    "Basic abc",
	}
	for header, want := range tests {
		if got := parseToken(header); got != want {
			t.Errorf("parseToken(%q) = %q, want %q", header, got, want)
		}
	}
}

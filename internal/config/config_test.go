package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("expected endpoint %q, got %q", DefaultEndpoint, cfg.Endpoint)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.AuthScheme != "" {
		t.Errorf("expected no auth scheme by default, got %q", cfg.AuthScheme)
	}
	if cfg.TokenPath() != filepath.Join(dir, "token.json") {
		t.Errorf("unexpected token path %q", cfg.TokenPath())
	}
}

func TestNew_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := "api:\n  endpoint: https://todo.example.com/graphql\n  timeout: 3s\n  auth_scheme: Bearer\nhttp:\n  addr: :9999\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Endpoint != "https://todo.example.com/graphql" {
		t.Errorf("unexpected endpoint %q", cfg.Endpoint)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Timeout)
	}
	if cfg.AuthScheme != "Bearer" {
		t.Errorf("unexpected auth scheme %q", cfg.AuthScheme)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("unexpected addr %q", cfg.HTTPAddr)
	}
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv("GTODO_API_ENDPOINT", "http://env.example/graphql")
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Endpoint != "http://env.example/graphql" {
		t.Errorf("expected env endpoint, got %q", cfg.Endpoint)
	}
}

func TestNew_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Error("expected error for malformed config.yaml")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", "gtodo") {
		t.Errorf("unexpected dir %q", got)
	}
}

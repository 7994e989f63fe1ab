package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(nil, mapEnv(nil))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.APIAddr() != "localhost:8080" {
		t.Errorf("APIAddr = %q", cfg.APIAddr())
	}
	if diff := cmp.Diff([]string{"http://localhost:5173"}, cfg.AllowedOrigins); diff != "" {
		t.Errorf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
	if cfg.Engine.Path != "stockfish" {
		t.Errorf("Engine.Path = %q", cfg.Engine.Path)
	}
	if cfg.Engine.MoveTime != 100*time.Millisecond {
		t.Errorf("Engine.MoveTime = %s", cfg.Engine.MoveTime)
	}
	if cfg.Engine.Threads != 1 || cfg.Engine.HashMB != 16 {
		t.Errorf("Engine threads/hash = %d/%d, want 1/16", cfg.Engine.Threads, cfg.Engine.HashMB)
	}
	if cfg.RateLimit != 10 {
		t.Errorf("RateLimit = %d", cfg.RateLimit)
	}
}

func TestParsePrecedence(t *testing.T) {
	env := mapEnv(map[string]string{
		EnvAPIPort:        "9000",
		EnvAllowedOrigins: "https://a.example, https://b.example,,",
		EnvEnginePath:     "/opt/stockfish",
		EnvMoveTime:       "250ms",
		EnvLogLevel:       "debug",
	})

	cfg, err := parse([]string{"-api-port", "9100", "-dev"}, env)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.APIPort != 9100 {
		t.Errorf("flag should override env: APIPort = %d", cfg.APIPort)
	}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins); diff != "" {
		t.Errorf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
	if cfg.Engine.Path != "/opt/stockfish" {
		t.Errorf("Engine.Path = %q", cfg.Engine.Path)
	}
	if cfg.Engine.MoveTime != 250*time.Millisecond {
		t.Errorf("Engine.MoveTime = %s", cfg.Engine.MoveTime)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.RateLimit != 20 {
		t.Errorf("dev mode should double the rate limit, got %d", cfg.RateLimit)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantMsg string
	}{
		{"bad port env", nil, map[string]string{EnvAPIPort: "eighty"}, EnvAPIPort},
		{"bad move time env", nil, map[string]string{EnvMoveTime: "fast"}, EnvMoveTime},
		{"port range", []string{"-api-port", "70000"}, nil, "api-port"},
		{"zero move time", []string{"-move-time", "0s"}, nil, "move-time"},
		{"threads", []string{"-engine-threads", "0"}, nil, "engine-threads"},
		{"hash", []string{"-engine-hash", "0"}, nil, "engine-hash"},
		{"pid lock without pid", []string{"-pid-lock"}, nil, "-pid-lock"},
		{"empty origins", []string{"-allowed-origins", " , "}, nil, "allowed-origins"},
		{"empty engine", []string{"-engine-path", " "}, nil, "engine-path"},
		{"unknown flag", []string{"-bogus"}, nil, "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.args, mapEnv(tt.env))
			if err == nil {
				t.Fatal("parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STOCKFISH_PATH=/usr/games/stockfish\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides variables that are already set
	t.Setenv(EnvEnginePath, "")
	os.Unsetenv(EnvEnginePath)

	cfg, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Path != "/usr/games/stockfish" {
		t.Errorf("Engine.Path = %q, want value from .env", cfg.Engine.Path)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	if _, err := Load(nil, filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
}

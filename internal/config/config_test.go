package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if !cfg.Dev() {
		t.Errorf("Expected dev mode by default")
	}
	if cfg.Auth.JWTSecret != devJWTSecret {
		t.Errorf("Expected dev secret fallback, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenDuration != 24*time.Hour {
		t.Errorf("TokenDuration = %v, want 24h", cfg.Auth.TokenDuration)
	}
	if cfg.Ledger.Currency != "INR" {
		t.Errorf("Currency = %s, want INR", cfg.Ledger.Currency)
	}
	if cfg.Budget.AllowanceMinor != 1000000 {
		t.Errorf("AllowanceMinor = %d, want 1000000", cfg.Budget.AllowanceMinor)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  mode: prod
auth:
  jwt_secret: "0123456789abcdef0123456789abcdef"
  token_duration: 1h
ledger:
  currency: usd
budget:
  monthly_allowance: "250.75"
cache:
  idempotency_ttl: 30m
`)
	t.Setenv("BUDGETBUDDY_SERVER_PORT", "7070")
	t.Setenv("DB_PATH", "/tmp/legacy.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/legacy.db" {
		t.Errorf("Database.Path = %s, want legacy DB_PATH", cfg.Database.Path)
	}
	if cfg.Auth.TokenDuration != time.Hour {
		t.Errorf("TokenDuration = %v, want 1h", cfg.Auth.TokenDuration)
	}
	if cfg.Cache.IdempotencyTTL != 30*time.Minute {
		t.Errorf("IdempotencyTTL = %v, want 30m", cfg.Cache.IdempotencyTTL)
	}
	if cfg.Ledger.Currency != "USD" {
		t.Errorf("Currency = %s, want USD", cfg.Ledger.Currency)
	}
	if cfg.Budget.AllowanceMinor != 25075 {
		t.Errorf("AllowanceMinor = %d, want 25075", cfg.Budget.AllowanceMinor)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "short secret in prod",
			body:    "server:\n  mode: prod\nauth:\n  jwt_secret: short\n",
			wantErr: "jwt_secret",
		},
		{
			name:    "unknown mode",
			body:    "server:\n  mode: staging\n",
			wantErr: "server.mode",
		},
		{
			name:    "unknown currency",
			body:    "ledger:\n  currency: XXQ\n",
			wantErr: "ledger.currency",
		},
		{
			name:    "allowance too precise",
			body:    "budget:\n  monthly_allowance: \"1.001\"\n",
			wantErr: "monthly_allowance",
		},
		{
			name:    "bad port",
			body:    "server:\n  port: 70000\n",
			wantErr: "server.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for explicit missing config file")
	}
}

package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "booking")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("NOTIFY_URL", "http://localhost:8081")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()
	if cfg.Port != "8080" || cfg.DBName != "booking" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.AccessTTLMin != 15 || cfg.BcryptCost != 10 {
		t.Fatalf("integer fields not parsed: %+v", cfg)
	}
	if cfg.NonceTTL != 10*time.Minute {
		t.Fatalf("expected default nonce TTL, got %s", cfg.NonceTTL)
	}
	if cfg.NotifyTimeout != 5*time.Second {
		t.Fatalf("expected default notify timeout, got %s", cfg.NotifyTimeout)
	}
	if cfg.GoogleClientID != "" {
		t.Fatalf("google settings must default to empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("OAUTH_NONCE_TTL", "3m")
	t.Setenv("NOTIFY_TIMEOUT", "750ms")
	t.Setenv("GOOGLE_CLIENT_ID", "cid")

	cfg := Load()
	if cfg.NonceTTL != 3*time.Minute {
		t.Fatalf("nonce TTL override ignored: %s", cfg.NonceTTL)
	}
	if cfg.NotifyTimeout != 750*time.Millisecond {
		t.Fatalf("notify timeout override ignored: %s", cfg.NotifyTimeout)
	}
	if cfg.GoogleClientID != "cid" {
		t.Fatalf("google client id override ignored")
	}
}

func TestLoadNotifierSharesDatabaseVars(t *testing.T) {
	setRequired(t)
	t.Setenv("NOTIFY_SECRET", "s3cret")

	cfg := LoadNotifier()
	if cfg.DBName != "booking" || cfg.Secret != "s3cret" {
		t.Fatalf("unexpected notifier config: %+v", cfg)
	}
}

func TestRateLimitBounds(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Fatalf("capacity must be clamped to 1, got %d", cfg.Capacity)
	}
	if cfg.TTL < 5*cfg.RefillInterval {
		t.Fatalf("TTL must cover several refill intervals, got %s", cfg.TTL)
	}
}

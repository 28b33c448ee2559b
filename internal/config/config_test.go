package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":13000")
	t.Setenv("API_URL", "http://api.internal:4000/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6380")
	t.Setenv("SESSION_TTL", "48h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("RECOVERY_CODE_TTL_SECONDS", "45")
	t.Setenv("RECOVERY_VERIFY_REMOTE", "false")
	t.Setenv("AUTH_RATE_LIMIT_PER_MINUTE", "25")

	cfg := Load()
	if cfg.HTTPAddr != ":13000" {
		t.Fatalf("expected HTTP_ADDR override, got %s", cfg.HTTPAddr)
	}
	if cfg.APIBaseURL != "http://api.internal:4000" {
		t.Fatalf("expected API_URL without trailing slash, got %s", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Fatalf("expected API_TIMEOUT 3s, got %s", cfg.APITimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("expected debug level, got %s", cfg.LogLevel)
	}
	if cfg.RedisAddr != "127.0.0.1:6380" {
		t.Fatalf("expected REDIS_ADDR override, got %s", cfg.RedisAddr)
	}
	if cfg.SessionTTL != 48*time.Hour {
		t.Fatalf("expected SESSION_TTL 48h, got %s", cfg.SessionTTL)
	}
	if !cfg.CookieSecure {
		t.Fatalf("expected COOKIE_SECURE true")
	}
	if cfg.RecoveryCodeTTL != 45*time.Second {
		t.Fatalf("expected RECOVERY_CODE_TTL 45s, got %s", cfg.RecoveryCodeTTL)
	}
	if cfg.RecoveryVerifyRemote {
		t.Fatalf("expected RECOVERY_VERIFY_REMOTE false")
	}
	if cfg.AuthRateLimitPerMinute != 25 {
		t.Fatalf("expected AUTH_RATE_LIMIT_PER_MINUTE 25, got %d", cfg.AuthRateLimitPerMinute)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("API_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "")

	cfg := Load()
	if cfg.APIBaseURL != "http://localhost:3333" {
		t.Fatalf("expected default API URL, got %s", cfg.APIBaseURL)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day session, got %s", cfg.SessionTTL)
	}
	if cfg.RecoveryCodeTTL != 30*time.Second {
		t.Fatalf("expected 30s recovery code, got %s", cfg.RecoveryCodeTTL)
	}
	if !cfg.RecoveryVerifyRemote {
		t.Fatalf("expected remote code verification by default")
	}
}

func TestLegacyAPIURLFallback(t *testing.T) {
	t.Setenv("API_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "https://api.linkeats.example")

	if got := Load().APIBaseURL; got != "https://api.linkeats.example" {
		t.Fatalf("expected NEXT_PUBLIC_API_URL fallback, got %s", got)
	}
}

func TestLoadDevAPI(t *testing.T) {
	t.Setenv("DEVAPI_ADDR", ":14333")
	t.Setenv("DEVAPI_SEED_COMPANY_ID", "7")
	t.Setenv("DEVAPI_TOKEN_TTL", "1h")

	cfg := LoadDevAPI()
	if cfg.HTTPAddr != ":14333" {
		t.Fatalf("expected DEVAPI_ADDR override, got %s", cfg.HTTPAddr)
	}
	if cfg.SeedCompanyID != 7 {
		t.Fatalf("expected company 7, got %d", cfg.SeedCompanyID)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %s", cfg.TokenTTL)
	}
}

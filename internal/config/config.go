package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr   string
	APIBaseURL string
	APITimeout time.Duration
	LogLevel   slog.Level

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionTTL   time.Duration
	CookieSecure bool

	RecoveryCodeTTL       time.Duration
	RecoveryVerifyRemote  bool
	RecoverySuccessDelay  time.Duration
	RecoveryFlowTTL       time.Duration
	RecoverySweepInterval time.Duration

	AuthRateLimitPerMinute int
}

// DevAPIConfig configures the in-memory backend served by cmd/devapi.
type DevAPIConfig struct {
	HTTPAddr       string
	JWTSecret      string
	JWTIssuer      string
	TokenTTL       time.Duration
	ResetCodeTTL   time.Duration
	SeedCompanyID  int64
	SeedAdminEmail string
	SeedAdminPass  string
	LogLevel       slog.Level
}

// LoadDotEnv reads a .env file from the working directory when one exists.
// Variables already present in the environment win.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

func Load() Config {
	return Config{
		HTTPAddr:               getenv("HTTP_ADDR", ":3000"),
		APIBaseURL:             strings.TrimRight(getenv("API_URL", getenv("NEXT_PUBLIC_API_URL", "http://localhost:3333")), "/"),
		APITimeout:             getenvDuration("API_TIMEOUT", 10*time.Second),
		LogLevel:               getenvLevel("LOG_LEVEL", slog.LevelInfo),
		RedisAddr:              getenv("REDIS_ADDR", ""),
		RedisPassword:          getenv("REDIS_PASSWORD", ""),
		RedisDB:                getenvInt("REDIS_DB", 0),
		SessionTTL:             getenvDuration("SESSION_TTL", 7*24*time.Hour),
		CookieSecure:           getenvBool("COOKIE_SECURE", false),
		RecoveryCodeTTL:        getenvDuration("RECOVERY_CODE_TTL", 30*time.Second),
		RecoveryVerifyRemote:   getenvBool("RECOVERY_VERIFY_REMOTE", true),
		RecoverySuccessDelay:   getenvDuration("RECOVERY_SUCCESS_DELAY", 2*time.Second),
		RecoveryFlowTTL:        getenvDuration("RECOVERY_FLOW_TTL", 15*time.Minute),
		RecoverySweepInterval:  getenvDuration("RECOVERY_SWEEP_INTERVAL", time.Minute),
		AuthRateLimitPerMinute: getenvInt("AUTH_RATE_LIMIT_PER_MINUTE", 10),
	}
}

func LoadDevAPI() DevAPIConfig {
	return DevAPIConfig{
		HTTPAddr:       getenv("DEVAPI_ADDR", ":3333"),
		JWTSecret:      getenv("DEVAPI_JWT_SECRET", "dev-secret"),
		JWTIssuer:      getenv("DEVAPI_JWT_ISSUER", "linkeats-devapi"),
		TokenTTL:       getenvDuration("DEVAPI_TOKEN_TTL", 24*time.Hour),
		ResetCodeTTL:   getenvDuration("DEVAPI_RESET_CODE_TTL", 10*time.Minute),
		SeedCompanyID:  int64(getenvInt("DEVAPI_SEED_COMPANY_ID", 2)),
		SeedAdminEmail: getenv("DEVAPI_SEED_ADMIN_EMAIL", "admin@linkeats.local"),
		SeedAdminPass:  getenv("DEVAPI_SEED_ADMIN_PASSWORD", "admin123"),
		LogLevel:       getenvLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getenvLevel(key string, fallback slog.Level) slog.Level {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(val)); err != nil {
		return fallback
	}
	return level
}

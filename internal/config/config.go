package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/garnizeh/interntrack/pkg/listings"
)

// InsecureJWTSecret is the built-in default; only development may run with it.
const InsecureJWTSecret = "supersecretkey"

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	// ResetTokenDuration bounds the life of a password reset token.
	ResetTokenDuration time.Duration `yaml:"reset_token_duration"`
	// AllowInsecurePasswordReset accepts email+new password without a token.
	AllowInsecurePasswordReset bool            `yaml:"allow_insecure_password_reset"`
	MigrateOnStart             bool            `yaml:"migrate_on_start"`
	LogLevel                   string          `yaml:"log_level"`
	CORSOrigin                 string          `yaml:"cors_origin"`
	RateLimit                  RateLimitConfig `yaml:"rate_limit"`
	Listings                   listings.Config `yaml:"listings"`
}

// RateLimitConfig throttles the unauthenticated user endpoints per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// LoadDotEnv loads variables from the given .env files. Missing files are
// skipped and variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 1 * time.Hour

	lc := listings.DefaultConfig()
	lc.BaseURL = getEnv("INTERNTRACK_LISTINGS_BASE_URL", lc.BaseURL)
	lc.APIHost = getEnv("INTERNTRACK_LISTINGS_API_HOST", lc.APIHost)
	lc.APIKey = getEnv("INTERNTRACK_LISTINGS_API_KEY", "")

	cfg := &Config{
		Addr:               getEnv("INTERNTRACK_ADDR", ":8080"),
		JWTSecret:          getEnv("INTERNTRACK_JWT_SECRET", InsecureJWTSecret),
		APITimeout:         apiTimeout,
		DatabasePath:       getEnv("INTERNTRACK_DATABASE_PATH", "interntrack.db"),
		TokenDuration:      tokenDuration,
		ResetTokenDuration: 15 * time.Minute,
		MigrateOnStart:     true,
		LogLevel:           getEnv("INTERNTRACK_LOG_LEVEL", "info"),
		CORSOrigin:         "*",
		RateLimit:          RateLimitConfig{RequestsPerMinute: 30, Burst: 10},
		Listings:           lc,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether INTERNTRACK_ENV is "development".
func IsDevelopment() bool {
	return strings.EqualFold(os.Getenv("INTERNTRACK_ENV"), "development")
}

// Validate checks required settings and fills defaults for optional ones.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == InsecureJWTSecret && !IsDevelopment() {
		return errors.New("jwt_secret uses the insecure default; set INTERNTRACK_JWT_SECRET or INTERNTRACK_ENV=development")
	}
	if c.AllowInsecurePasswordReset && !IsDevelopment() {
		return errors.New("allow_insecure_password_reset is only permitted with INTERNTRACK_ENV=development")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = time.Hour
	}
	if c.ResetTokenDuration <= 0 {
		c.ResetTokenDuration = 15 * time.Minute
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		c.RateLimit.RequestsPerMinute = 30
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 10
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	c.Listings = c.Listings.WithDefaults()
	return nil
}

// ParseLevel maps a log_level string to a slog level; empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return lvl, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageLocal  = "local"
	StorageS3     = "s3"
	StorageSQLite = "sqlite"

	minJWTSecretLen = 32
)

// Config holds every setting of the server and the CLI commands.
type Config struct {
	Port         string
	DatabasePath string

	StorageBackend  string
	UploadDir       string
	UploadURLPrefix string
	MaxUploadBytes  int64
	S3              S3Config

	JWTSecret    string
	CookieSecure bool
	BcryptCost   int

	LogLevel  slog.Level
	LogFormat string

	Rewrite RewriteConfig
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

type RewriteConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	BannedWordsPath string
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables that are already set, then builds a Config from the
// environment. An empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	e := env{getenv: getenv}

	cfg := &Config{
		Port:            e.str("PORT", "8080"),
		DatabasePath:    e.str("DATABASE_PATH", "catalog.db"),
		StorageBackend:  strings.ToLower(e.str("STORAGE_BACKEND", StorageLocal)),
		UploadDir:       e.str("UPLOAD_DIR", "static/uploads"),
		UploadURLPrefix: e.str("UPLOAD_URL_PREFIX", "/static/uploads"),
		MaxUploadBytes:  e.integer("MAX_UPLOAD_BYTES", 32<<20),
		S3: S3Config{
			Bucket:    e.str("S3_BUCKET", ""),
			Region:    e.str("S3_REGION", "us-east-1"),
			Endpoint:  e.str("S3_ENDPOINT", ""),
			AccessKey: e.str("S3_ACCESS_KEY", ""),
			SecretKey: e.str("S3_SECRET_KEY", ""),
			PublicURL: e.str("S3_PUBLIC_URL", ""),
		},
		JWTSecret: e.str("JWT_SECRET", ""),
		// Secure cookies unless explicitly disabled for local development.
		CookieSecure: e.str("COOKIE_SECURE", "") != "false",
		BcryptCost:   int(e.integer("BCRYPT_COST", 12)),
		LogLevel:     e.level("LOG_LEVEL", slog.LevelInfo),
		LogFormat:    strings.ToLower(e.str("LOG_FORMAT", "text")),
		Rewrite: RewriteConfig{
			APIKey:          e.str("DEEPSEEK_API_KEY", getenv("OPENAI_API_KEY")),
			BaseURL:         e.str("DEEPSEEK_API_BASE", "https://api.deepseek.com"),
			Model:           e.str("REWRITE_MODEL", "deepseek-chat"),
			Timeout:         e.duration("REWRITE_TIMEOUT", 60*time.Second),
			BannedWordsPath: e.str("BANNED_WORDS_PATH", ""),
		},
	}

	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters for HMAC-SHA256 security", minJWTSecretLen))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	switch c.StorageBackend {
	case StorageLocal:
		if c.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR is required for local storage"))
		}
	case StorageS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for s3 storage"))
		}
		if c.S3.PublicURL == "" {
			errs = append(errs, errors.New("S3_PUBLIC_URL is required for s3 storage"))
		}
	case StorageSQLite:
		if c.UploadURLPrefix == "" || c.UploadURLPrefix == "/" {
			errs = append(errs, errors.New("UPLOAD_URL_PREFIX is required for sqlite storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be %q, %q or %q, got %q", StorageLocal, StorageS3, StorageSQLite, c.StorageBackend))
	}

	return errors.Join(errs...)
}

type env struct {
	getenv func(string) string
	errs   []error
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *env) integer(key string, def int64) int64 {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return d
}

func (e *env) level(key string, def slog.Level) slog.Level {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return l
}

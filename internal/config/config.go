package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort              = 3000
	defaultEnv               = "development"
	defaultDatabaseURL       = "sqlite://data/portfolio.db"
	defaultAdminUsername     = "admin"
	defaultBackupInterval    = 24
	defaultRateLimitMax      = 5
	defaultRateLimitWindow   = 60
	defaultHTTPCacheTTL      = 15
	defaultBackupS3KeyPrefix = "backups/{Y}/{m}/{filename}"
)

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int             `yaml:"port"`
	Env            string          `yaml:"env"` // "development" | "production" | "test"
	Database       DatabaseConfig  `yaml:"database"`
	Redis          RedisConfig     `yaml:"redis"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	JWTSecret      string          `yaml:"jwt_secret"`
	Admin          AdminConfig     `yaml:"admin"`
	Paths          PathsConfig     `yaml:"paths"`
	Backup         BackupConfig    `yaml:"backup"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	HTTPCache      HTTPCacheConfig `yaml:"http_cache"`
	Timezone       string          `yaml:"timezone"`
}

type DatabaseConfig struct {
	URL   string `yaml:"url"`
	Debug bool   `yaml:"debug"`
}

// RedisConfig is optional. An empty URL disables every redis-backed middleware.
type RedisConfig struct {
	URL string `yaml:"url"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type PathsConfig struct {
	Logs    string `yaml:"logs"`
	Backups string `yaml:"backups"`
}

type BackupConfig struct {
	Enable        bool     `yaml:"enable"`
	IntervalHours int      `yaml:"interval_hours"`
	S3            S3Config `yaml:"s3"`
}

type S3Config struct {
	Enable          bool   `yaml:"enable"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
	KeyTemplate     string `yaml:"key_template"`
}

type RateLimitConfig struct {
	Max           int `yaml:"max"`
	WindowSeconds int `yaml:"window_seconds"`
}

type HTTPCacheConfig struct {
	Disable    bool `yaml:"disable"`
	TTLSeconds int  `yaml:"ttl_seconds"`
}

// Load reads the YAML file at configPath, applies environment overrides and validates the result.
// A missing file is not an error: defaults plus environment are enough to boot.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := Default()
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnv(&cfg, os.LookupEnv)
	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() AppConfig {
	return AppConfig{
		Port:     defaultPort,
		Env:      defaultEnv,
		Database: DatabaseConfig{URL: defaultDatabaseURL},
		Admin:    AdminConfig{Username: defaultAdminUsername},
		Backup: BackupConfig{
			IntervalHours: defaultBackupInterval,
			S3:            S3Config{KeyTemplate: defaultBackupS3KeyPrefix},
		},
		RateLimit: RateLimitConfig{Max: defaultRateLimitMax, WindowSeconds: defaultRateLimitWindow},
		HTTPCache: HTTPCacheConfig{TTLSeconds: defaultHTTPCacheTTL},
	}
}

// Validate reports the first invalid setting.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("database.url is required (or set DATABASE_URL)")
	}
	if c.RateLimit.Max < 0 || c.RateLimit.WindowSeconds < 0 {
		return errors.New("rate_limit values must not be negative")
	}
	if c.Backup.S3.Enable {
		s3 := c.Backup.S3
		if s3.Bucket == "" || s3.Region == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "" {
			return errors.New("incomplete backup.s3 config: bucket/region/access_key_id/secret_access_key are required")
		}
	}
	return nil
}

func (c *AppConfig) IsDev() bool { return c.Env == "development" }

func (c *AppConfig) IsTest() bool { return c.Env == "test" }

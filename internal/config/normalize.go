package config

import (
	"strconv"
	"strings"
)

type lookupFunc func(key string) (string, bool)

// applyEnv lets the environment override the file. DATABASE_URL is the one setting
// deployments are expected to provide.
func applyEnv(cfg *AppConfig, lookup lookupFunc) {
	if v, ok := lookupNonEmpty(lookup, "DATABASE_URL"); ok {
		cfg.Database.URL = v
	}
	if v, ok := lookupNonEmpty(lookup, "REDIS_URL"); ok {
		cfg.Redis.URL = v
	}
	if v, ok := lookupNonEmpty(lookup, "JWT_SECRET"); ok {
		cfg.JWTSecret = v
	}
	if v, ok := lookupNonEmpty(lookup, "ADMIN_USERNAME"); ok {
		cfg.Admin.Username = v
	}
	if v, ok := lookupNonEmpty(lookup, "ADMIN_PASSWORD"); ok {
		cfg.Admin.Password = v
	}
	if v, ok := lookupNonEmpty(lookup, "APP_ENV"); ok {
		cfg.Env = v
	}
	if v, ok := lookupNonEmpty(lookup, "PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
}

func lookupNonEmpty(lookup lookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func normalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Database.URL = strings.TrimSpace(cfg.Database.URL)
	cfg.Redis.URL = normalizeRedisURL(cfg.Redis.URL)
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.Admin.Username = strings.TrimSpace(cfg.Admin.Username)
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = defaultAdminUsername
	}
	if cfg.Backup.IntervalHours <= 0 {
		cfg.Backup.IntervalHours = defaultBackupInterval
	}
	if strings.TrimSpace(cfg.Backup.S3.KeyTemplate) == "" {
		cfg.Backup.S3.KeyTemplate = defaultBackupS3KeyPrefix
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = defaultRateLimitWindow
	}
	if cfg.HTTPCache.TTLSeconds <= 0 {
		cfg.HTTPCache.TTLSeconds = defaultHTTPCacheTTL
	}
}

func normalizeRedisURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		if v := strings.TrimSpace(origin); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return "production"
	case "test":
		return "test"
	default:
		return defaultEnv
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
)

// WorkDir returns the directory runtime paths are resolved against.
func WorkDir() string {
	if wd, err := os.Getwd(); err == nil && strings.TrimSpace(wd) != "" {
		return wd
	}
	return "."
}

// ResolveRuntimePath resolves a configured directory against the working directory.
func ResolveRuntimePath(raw string, fallbackSubdir string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = fallbackSubdir
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(WorkDir(), target))
}

// LogDir is empty when file logging is not configured.
func (c *AppConfig) LogDir() string {
	if strings.TrimSpace(c.Paths.Logs) == "" {
		return ""
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

func (c *AppConfig) BackupDir() string {
	return ResolveRuntimePath(c.Paths.Backups, "backups")
}

package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/folio-space/core/internal/config"
	jwtpkg "github.com/folio-space/core/internal/pkg/jwt"
	"go.uber.org/zap"
)

var errBadTimezone = errors.New("want an IANA zone such as Europe/Berlin or an offset such as +02:00")

// applyRuntimeSettings pushes process-wide settings (signing secret, local
// zone) out of the loaded config.
func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) error {
	secret := strings.TrimSpace(cfg.JWTSecret)
	switch {
	case secret != "":
		jwtpkg.SetSecret(secret)
	case cfg.IsDev():
		logger.Warn("no jwt secret configured; tokens are signed with the development default")
	default:
		logger.Warn("no jwt secret configured; set jwt_secret before exposing this instance")
	}

	name := strings.TrimSpace(cfg.Timezone)
	if name == "" {
		return nil
	}
	loc, err := parseTimezoneLocation(name)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", name, err)
	}
	time.Local = loc
	_ = os.Setenv("TZ", name)
	return nil
}

// parseTimezoneLocation accepts IANA names plus "+HH:MM" / "-HHMM" offsets.
func parseTimezoneLocation(raw string) (*time.Location, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return time.Local, nil
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc, nil
	}

	sign := 1
	switch {
	case strings.HasPrefix(name, "+"):
	case strings.HasPrefix(name, "-"):
		sign = -1
	default:
		return nil, errBadTimezone
	}
	digits := strings.ReplaceAll(name[1:], ":", "")
	if len(digits) != 4 {
		return nil, errBadTimezone
	}
	hours, err := strconv.Atoi(digits[:2])
	if err != nil || hours > 23 {
		return nil, errBadTimezone
	}
	minutes, err := strconv.Atoi(digits[2:])
	if err != nil || minutes > 59 {
		return nil, errBadTimezone
	}
	return time.FixedZone(name, sign*(hours*3600+minutes*60)), nil
}

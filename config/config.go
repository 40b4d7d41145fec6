package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MaintenanceFallbackWindow is how far in the future the maintenance window
// end is assumed to be when the configured value cannot be parsed.
const MaintenanceFallbackWindow = 30 * time.Minute

// Config holds all environment-driven settings for the portal server.
type Config struct {
	ListenAddr string
	DataDir    string
	APIBaseURL string

	DBPath string

	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	IdleTimeout      time.Duration
	ActivityThrottle time.Duration

	MaintenanceMode    bool
	MaintenanceMessage string
	MaintenanceEnd     time.Time
	BypassKeyword      string

	PaymentProviderURL string
	PaymentPollEvery   time.Duration

	MaxUploadBytes int64

	HTTPReadTimeoutSec  int
	HTTPWriteTimeoutSec int
	HTTPIdleTimeoutSec  int
}

// Load reads configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:          env("LISTEN_ADDR", ":8080"),
		DataDir:             env("PORTAL_DATA_DIR", "./data"),
		APIBaseURL:          env("PORTAL_API_BASE_URL", "http://localhost:8080"),
		DBPath:              env("PORTAL_DB_PATH", "./data/portal.db"),
		LogPath:             env("PORTAL_LOG_PATH", ""),
		LogMaxSizeMB:        envInt("PORTAL_LOG_MAX_SIZE_MB", 20),
		LogMaxBackups:       envInt("PORTAL_LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays:       envInt("PORTAL_LOG_MAX_AGE_DAYS", 30),
		IdleTimeout:         time.Duration(envInt("SESSION_IDLE_MINUTES", 30)) * time.Minute,
		ActivityThrottle:    time.Duration(envInt("SESSION_ACTIVITY_THROTTLE_SEC", 60)) * time.Second,
		MaintenanceMode:     envBool("MAINTENANCE_MODE", false),
		MaintenanceMessage:  env("MAINTENANCE_MESSAGE", "The portal is undergoing scheduled maintenance."),
		BypassKeyword:       env("MAINTENANCE_BYPASS_KEYWORD", ""),
		PaymentProviderURL:  env("PAYMENT_PROVIDER_URL", ""),
		PaymentPollEvery:    time.Duration(envInt("PAYMENT_POLL_SECONDS", 5)) * time.Second,
		MaxUploadBytes:      int64(envInt("UPLOAD_MAX_MB", 10)) << 20,
		HTTPReadTimeoutSec:  envInt("HTTP_READ_TIMEOUT_SEC", 10),
		HTTPWriteTimeoutSec: envInt("HTTP_WRITE_TIMEOUT_SEC", 30),
		HTTPIdleTimeoutSec:  envInt("HTTP_IDLE_TIMEOUT_SEC", 60),
	}

	cfg.MaintenanceEnd = ParseMaintenanceEnd(os.Getenv("MAINTENANCE_END"), time.Now())

	if cfg.IdleTimeout <= 0 {
		return Config{}, fmt.Errorf("session idle timeout must be positive")
	}
	if cfg.ActivityThrottle <= 0 || cfg.ActivityThrottle >= cfg.IdleTimeout {
		return Config{}, fmt.Errorf("activity throttle must be positive and shorter than the idle timeout")
	}
	if cfg.PaymentPollEvery <= 0 {
		return Config{}, fmt.Errorf("payment poll interval must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, fmt.Errorf("upload size limit must be positive")
	}

	return cfg, nil
}

// ParseMaintenanceEnd parses a maintenance window end from a date string.
// Invalid or empty values fall back to now plus MaintenanceFallbackWindow
// rather than failing, so a typo in the environment never blocks startup.
func ParseMaintenanceEnd(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.Add(MaintenanceFallbackWindow)
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	return now.Add(MaintenanceFallbackWindow)
}

func env(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the chatdesk service.
type Config struct {
	HTTPPort             int
	SQLiteDSN            string
	SessionTTL           time.Duration
	StatusCacheTTL       time.Duration
	BootstrapAdminEmail  string
	BootstrapAdminSecret string
}

// Load parses configuration values from the current process environment.
//
// Every value has a sensible default so a bare environment boots a working
// instance; the bootstrap admin credentials are optional and only consulted
// when the user table is empty.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:chatdesk.db?_foreign_keys=on",
		SessionTTL:     24 * time.Hour,
		StatusCacheTTL: 15 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CHATDESK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CHATDESK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CHATDESK_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("CHATDESK_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CHATDESK_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("CHATDESK_STATUS_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CHATDESK_STATUS_CACHE_TTL")
		} else {
			cfg.StatusCacheTTL = ttl
		}
	}

	cfg.BootstrapAdminEmail = strings.TrimSpace(os.Getenv("CHATDESK_BOOTSTRAP_ADMIN_EMAIL"))
	cfg.BootstrapAdminSecret = os.Getenv("CHATDESK_BOOTSTRAP_ADMIN_PASSWORD")

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

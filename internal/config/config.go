// Package config loads application configuration from environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EncryptionKeySize is the decoded length required of ORGVAULT_ENCRYPTION_KEY.
const EncryptionKeySize = 32

// Config holds the application configuration loaded from environment variables.
// AdminPassword, EncryptionKey and SessionSecret are secrets and must never be
// logged.
type Config struct {
	AdminPassword      string
	EncryptionKey      []byte
	SessionSecret      string
	DBPath             string
	ListenAddr         string
	SessionTTL         time.Duration
	CookieSecure       bool
	AllowedOrigins     []string
	LaunchRequireAdmin bool
}

// Load reads configuration from environment variables and returns a validated Config.
//
// Required: ORGVAULT_ADMIN_PASSWORD, ORGVAULT_ENCRYPTION_KEY (base64 of 32 bytes),
// ORGVAULT_SESSION_SECRET.
// Optional variables with defaults: ORGVAULT_DB_PATH (orgvault.db),
// ORGVAULT_LISTEN_ADDR (127.0.0.1:3000), ORGVAULT_SESSION_TTL (24h),
// ORGVAULT_COOKIE_SECURE (false), ORGVAULT_ALLOWED_ORIGINS (none),
// ORGVAULT_LAUNCH_REQUIRE_ADMIN (false).
func Load() (*Config, error) {
	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	adminPassword := required("ORGVAULT_ADMIN_PASSWORD")
	rawKey := required("ORGVAULT_ENCRYPTION_KEY")
	sessionSecret := required("ORGVAULT_SESSION_SECRET")
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	key, err := decodeKey(rawKey)
	if err != nil {
		return nil, fmt.Errorf("ORGVAULT_ENCRYPTION_KEY: %w", err)
	}

	dbPath := "orgvault.db"
	if v, ok := os.LookupEnv("ORGVAULT_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	listenAddr := "127.0.0.1:3000"
	if v, ok := os.LookupEnv("ORGVAULT_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	sessionTTL := 24 * time.Hour
	if v, ok := os.LookupEnv("ORGVAULT_SESSION_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ORGVAULT_SESSION_TTL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("ORGVAULT_SESSION_TTL must be positive, got %s", parsed)
		}
		sessionTTL = parsed
	}

	cookieSecure, err := parseBool("ORGVAULT_COOKIE_SECURE")
	if err != nil {
		return nil, err
	}

	launchRequireAdmin, err := parseBool("ORGVAULT_LAUNCH_REQUIRE_ADMIN")
	if err != nil {
		return nil, err
	}

	allowedOrigins := []string{}
	if v, ok := os.LookupEnv("ORGVAULT_ALLOWED_ORIGINS"); ok && v != "" {
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimRight(strings.TrimSpace(origin), "/")
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	return &Config{
		AdminPassword:      adminPassword,
		EncryptionKey:      key,
		SessionSecret:      sessionSecret,
		DBPath:             dbPath,
		ListenAddr:         listenAddr,
		SessionTTL:         sessionTTL,
		CookieSecure:       cookieSecure,
		AllowedOrigins:     allowedOrigins,
		LaunchRequireAdmin: launchRequireAdmin,
	}, nil
}

// decodeKey accepts standard or URL-safe base64, padded or not. The error
// never includes the key material.
func decodeKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		key, err := enc.DecodeString(raw)
		if err != nil {
			continue
		}
		if len(key) != EncryptionKeySize {
			return nil, fmt.Errorf("must decode to %d bytes, got %d", EncryptionKeySize, len(key))
		}
		return key, nil
	}
	return nil, errors.New("is not valid base64")
}

func parseBool(key string) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s has invalid boolean %q: %w", key, v, err)
	}
	return b, nil
}

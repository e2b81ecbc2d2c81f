// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string
	SessionSalt  string

	MaxLoginAttempts int
	LoginLockout     time.Duration
	SessionTTL       time.Duration

	// AllowedVotingIPs restricts the voting routes. Empty allows every address.
	AllowedVotingIPs []string

	// TrustedProxies are the peers whose forwarding headers name the client.
	TrustedProxies []string

	PrintAdminKey bool
}

const (
	defaultPort             = 3318
	defaultMaxLoginAttempts = 5
	defaultLoginLockout     = 15 * time.Minute
	defaultSessionTTL       = 8 * time.Hour
)

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var (
		cfg        Config
		envFile    string
		allowedIPs string
		proxies    string
	)

	fs := flag.NewFlagSet("quickly-elect", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.SessionSalt, "session-salt", "", "Session token salt (prefer env)")

	// Login and voting policy
	fs.IntVar(&cfg.MaxLoginAttempts, "max-login-attempts", 0, "Failed logins before lockout")
	fs.DurationVar(&cfg.LoginLockout, "login-lockout", 0, "Lockout window after too many failed logins")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Voter session lifetime")
	fs.StringVar(&allowedIPs, "allowed-ips", "", "Comma-separated addresses allowed to vote")
	fs.StringVar(&proxies, "trusted-proxies", "", "Comma-separated proxy addresses whose X-Forwarded-For is honoured")

	fs.BoolVar(&cfg.PrintAdminKey, "print-admin-key", false, "Print the root admin key and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			// Load never overrides variables that are already set.
			if err := godotenv.Load(envFile); err != nil {
				return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", defaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}
	if cfg.PrintAdminKey {
		return cfg, nil
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.SessionSalt == "" {
		cfg.SessionSalt = os.Getenv("SESSION_SALT")
	}
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("SESSION_SALT required")
	}

	if cfg.MaxLoginAttempts == 0 {
		n, err := envInt("MAX_LOGIN_ATTEMPTS", defaultMaxLoginAttempts)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxLoginAttempts = n
	}
	if cfg.MaxLoginAttempts < 1 {
		return Config{}, errors.New("max login attempts must be positive")
	}

	if cfg.LoginLockout == 0 {
		d, err := envDuration("LOGIN_LOCKOUT", defaultLoginLockout)
		if err != nil {
			return Config{}, err
		}
		cfg.LoginLockout = d
	}
	if cfg.SessionTTL == 0 {
		d, err := envDuration("SESSION_TTL", defaultSessionTTL)
		if err != nil {
			return Config{}, err
		}
		cfg.SessionTTL = d
	}

	if allowedIPs == "" {
		allowedIPs = os.Getenv("ALLOWED_VOTING_IPS")
	}
	cfg.AllowedVotingIPs = splitList(allowedIPs)

	if proxies == "" {
		proxies = os.Getenv("TRUSTED_PROXIES")
	}
	cfg.TrustedProxies = splitList(proxies)

	return cfg, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

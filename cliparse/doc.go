// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL connection string or SQLite file (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - SessionSalt: Secret for voter session tokens (required)
  - MaxLoginAttempts: Failed logins before lockout (default: 5)
  - LoginLockout: Lockout window (default: 15m)
  - SessionTTL: Session lifetime (default: 8h)
  - AllowedVotingIPs: Addresses allowed to vote (default: all)
  - TrustedProxies: Peers whose X-Forwarded-For is honoured (default: none)

# CLI Flags

	-p                   Server port
	-d                   Database URL
	-t                   Database type
	-env-file            Dotenv file (default .env)
	-admin-salt          Admin key salt
	-session-salt        Session token salt
	-max-login-attempts  Failed logins before lockout
	-login-lockout       Lockout window
	-session-ttl         Session lifetime
	-allowed-ips         Comma-separated voting allow-list
	-trusted-proxies     Comma-separated trusted proxy addresses
	-print-admin-key     Print the root admin key and exit

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	ADMIN_KEY_SALT     → -admin-salt
	SESSION_SALT       → -session-salt
	MAX_LOGIN_ATTEMPTS → -max-login-attempts
	LOGIN_LOCKOUT      → -login-lockout
	SESSION_TTL        → -session-ttl
	ALLOWED_VOTING_IPS → -allowed-ips
	TRUSTED_PROXIES    → -trusted-proxies

CLI flags take precedence over environment variables, and environment
variables take precedence over the dotenv file.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - SESSION_SALT must be provided

With -print-admin-key only ADMIN_KEY_SALT is required.
*/
package cliparse

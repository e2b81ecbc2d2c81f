// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Elect API server.

Quickly Elect runs a two-tier departmental election. Voters elect delegates
from their own department; approved delegates then elect the officers for
each of the eight fixed positions. An election moves through
registration → delegate_voting → main_voting → results → closed, one step
at a time.

# Starting the Server

	ADMIN_KEY_SALT=... SESSION_SALT=... DATABASE_URL=elect.db go run .

Or with PostgreSQL:

	go run . -t postgres -d "postgres://..."

Print the root admin key (used to create elections):

	go run . -print-admin-key

# Configuration

Settings come from flags, then the environment, then an optional .env file:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC
  - SESSION_SALT (-session-salt): Secret for voter session tokens
  - MAX_LOGIN_ATTEMPTS, LOGIN_LOCKOUT: Failed login throttle (5, 15m)
  - SESSION_TTL: Voter session lifetime (8h)
  - ALLOWED_VOTING_IPS: Comma-separated addresses or CIDRs allowed to vote
  - TRUSTED_PROXIES: Proxies whose X-Forwarded-For names the client (default: none)

# Architecture

  - election: Phase machine, eligibility, capacity guard, vote ledger, tallies
  - store: SQL queries and transactions over PostgreSQL or SQLite
  - audit: Best-effort audit trail
  - handlers, router, middleware: JSON HTTP API
  - auth: Admin keys, session tokens, credential checks
  - throttle: Failed login lockout
  - db: Drivers, schema, error classification
  - cliparse: Configuration parsing
  - models: Shared types

See package documentation for each component.
*/
package main

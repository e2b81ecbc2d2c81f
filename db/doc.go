// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation, and driver error
classification.

# Connecting

Open selects the driver by Dialect. PostgreSQL uses lib/pq; SQLite uses
modernc.org/sqlite with WAL, a busy timeout, foreign keys, and immediate
write transactions:

	conn, err := db.Open(ctx, db.SQLite, "elections.db")

# Schema Creation

CreateSchema initializes all required tables and seeds the eight fixed
positions:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes
and ON CONFLICT DO NOTHING for positions.

# Tables

  - faculty, department, programme: organizational reference data
  - voter: enrolled voters and their secret hashes
  - party, position: parties and the fixed offices
  - delegate: one per voter, bound to a (party, department) pair
  - candidate: one per (party, position)
  - election: phase and voting windows
  - delegate_vote: one per (election, voter)
  - main_vote: one per (election, delegate, position)
  - audit_log: append-only audit records
  - election_result: cached tallies, rewritten on refresh

# Relationships

	faculty 1──* department 1──* programme 1──* voter
	voter 1──1 delegate *──1 party
	voter 1──* candidate *──1 position
	election 1──* delegate_vote *──1 delegate
	election 1──* main_vote *──1 candidate

# Uniqueness

The unique indexes are the authoritative duplicate guard. Callers detect
them with IsUniqueViolation and retry transient lock conflicts detected with
IsContention. A partial unique index on election.is_active allows at most
one active election.
*/
package db

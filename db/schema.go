// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/danielhkuo/quickly-elect/models"
)

// CreateSchema creates all tables needed for the application and seeds the
// fixed positions. Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range splitStatements(schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	for i, p := range positions {
		_, err := db.ExecContext(ctx, `
			INSERT INTO position (id, name, display_name, display_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`, "position-"+p.name, p.name, p.display, i+1)
		if err != nil {
			return fmt.Errorf("failed to seed position %s: %w", p.name, err)
		}
	}

	return nil
}

// positions lists the fixed offices in display order.
var positions = []struct {
	name    string
	display string
}{
	{models.PositionPresident, "President"},
	{models.PositionVicePresident, "Vice President"},
	{models.PositionSecretaryGeneral, "Secretary General"},
	{models.PositionTreasurer, "Treasurer"},
	{models.PositionSportsMinister, "Sports Minister"},
	{models.PositionEntertainmentMinister, "Entertainment Minister"},
	{models.PositionEducationMinister, "Education Minister"},
	{models.PositionAccommodationMinister, "Accommodation Minister"},
}

// splitStatements breaks the schema into single statements. Some drivers
// only run the first statement of a multi-statement Exec.
func splitStatements(s string) []string {
	var stmts []string
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(stripComments(part)) != "" {
			stmts = append(stmts, part)
		}
	}
	return stmts
}

func stripComments(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

const schema = `
-- Organizational reference data
CREATE TABLE IF NOT EXISTS faculty (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    code TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS department (
    id TEXT PRIMARY KEY,
    faculty_id TEXT NOT NULL REFERENCES faculty(id),
    name TEXT NOT NULL,
    code TEXT NOT NULL UNIQUE
);

CREATE INDEX IF NOT EXISTS idx_department_faculty_id ON department(faculty_id);

CREATE TABLE IF NOT EXISTS programme (
    id TEXT PRIMARY KEY,
    department_id TEXT NOT NULL REFERENCES department(id),
    name TEXT NOT NULL,
    code TEXT NOT NULL UNIQUE
);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    registration_number TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    programme_id TEXT REFERENCES programme(id),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    secret_hash TEXT NOT NULL,
    last_login_ip TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_voter_programme_id ON voter(programme_id);

-- Parties and positions
CREATE TABLE IF NOT EXISTS party (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    acronym TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    color_code TEXT NOT NULL DEFAULT '#000000',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS position (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    display_order INTEGER NOT NULL
);

-- Delegates: one per voter, at most one per (voter, department)
CREATE TABLE IF NOT EXISTS delegate (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL UNIQUE REFERENCES voter(id),
    party_id TEXT NOT NULL REFERENCES party(id),
    department_id TEXT NOT NULL REFERENCES department(id),
    is_approved BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (voter_id, department_id)
);

CREATE INDEX IF NOT EXISTS idx_delegate_party_department ON delegate(party_id, department_id);

-- Candidates: one per (party, position)
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL REFERENCES voter(id),
    party_id TEXT NOT NULL REFERENCES party(id),
    position_id TEXT NOT NULL REFERENCES position(id),
    manifesto TEXT NOT NULL DEFAULT '',
    is_approved BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (party_id, position_id)
);

CREATE INDEX IF NOT EXISTS idx_candidate_position_id ON candidate(position_id);

-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    current_phase TEXT NOT NULL DEFAULT 'registration'
        CHECK (current_phase IN ('registration', 'delegate_voting', 'main_voting', 'results', 'closed')),
    delegate_voting_start TIMESTAMP NOT NULL,
    delegate_voting_end TIMESTAMP NOT NULL,
    main_voting_start TIMESTAMP NOT NULL,
    main_voting_end TIMESTAMP NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

-- At most one active election
CREATE UNIQUE INDEX IF NOT EXISTS uq_election_active ON election(is_active) WHERE is_active;

-- Delegate votes: one per (election, voter)
CREATE TABLE IF NOT EXISTS delegate_vote (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id),
    voter_id TEXT NOT NULL REFERENCES voter(id),
    delegate_id TEXT NOT NULL REFERENCES delegate(id),
    voter_ip TEXT NOT NULL DEFAULT '',
    cast_at TIMESTAMP NOT NULL,
    UNIQUE (election_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_delegate_vote_delegate_id ON delegate_vote(election_id, delegate_id);

-- Main votes: one per (election, delegate, position)
CREATE TABLE IF NOT EXISTS main_vote (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id),
    delegate_id TEXT NOT NULL REFERENCES delegate(id),
    candidate_id TEXT NOT NULL REFERENCES candidate(id),
    position_id TEXT NOT NULL REFERENCES position(id),
    voter_ip TEXT NOT NULL DEFAULT '',
    cast_at TIMESTAMP NOT NULL,
    UNIQUE (election_id, delegate_id, position_id)
);

CREATE INDEX IF NOT EXISTS idx_main_vote_candidate_id ON main_vote(election_id, candidate_id);

-- Audit log (append-only)
CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    voter_id TEXT REFERENCES voter(id),
    action TEXT NOT NULL,
    description TEXT NOT NULL,
    ip_address TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    success BOOLEAN NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
CREATE INDEX IF NOT EXISTS idx_audit_log_voter_id ON audit_log(voter_id);

-- Result cache, rewritten on refresh
CREATE TABLE IF NOT EXISTS election_result (
    election_id TEXT NOT NULL REFERENCES election(id),
    candidate_id TEXT NOT NULL REFERENCES candidate(id),
    vote_count INTEGER NOT NULL,
    percentage REAL NOT NULL,
    is_winner BOOLEAN NOT NULL,
    computed_at TIMESTAMP NOT NULL,
    PRIMARY KEY (election_id, candidate_id)
);
`

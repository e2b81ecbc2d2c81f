// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

const electionColumns = `id, name, description, current_phase,
	delegate_voting_start, delegate_voting_end, main_voting_start, main_voting_end,
	is_active, created_at`

func scanElection(row interface{ Scan(...any) error }) (models.Election, error) {
	var (
		e     models.Election
		phase string
	)
	err := row.Scan(&e.ID, &e.Name, &e.Description, &phase,
		&e.DelegateVotingStart, &e.DelegateVotingEnd, &e.MainVotingStart, &e.MainVotingEnd,
		&e.IsActive, &e.CreatedAt)
	e.CurrentPhase = models.Phase(phase)
	return e, err
}

// InsertElection stores a new election. An active election collides with the
// single-active index and returns ErrActiveElectionExists.
func (q *Queries) InsertElection(ctx context.Context, e models.Election) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO election (id, name, description, current_phase,
			delegate_voting_start, delegate_voting_end, main_voting_start, main_voting_end,
			is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.Name, e.Description, string(e.CurrentPhase),
		e.DelegateVotingStart, e.DelegateVotingEnd, e.MainVotingStart, e.MainVotingEnd,
		e.IsActive, e.CreatedAt)
	if err != nil {
		if e.IsActive && db.IsUniqueViolation(err) {
			return ErrActiveElectionExists
		}
		return insertErr(err, "election")
	}
	return nil
}

func (q *Queries) GetElection(ctx context.Context, id string) (models.Election, error) {
	e, err := scanElection(q.q.QueryRowContext(ctx, `
		SELECT `+electionColumns+` FROM election WHERE id = $1
	`, id))
	if err != nil {
		return models.Election{}, notFound(err, "election")
	}
	return e, nil
}

// ShareElection reads the election and holds a shared row lock on it until
// the transaction ends, so a phase update waits for in-flight votes. SQLite
// write transactions already exclude concurrent writers.
func (q *Queries) ShareElection(ctx context.Context, id string) (models.Election, error) {
	query := `SELECT ` + electionColumns + ` FROM election WHERE id = $1`
	if q.dialect == db.Postgres {
		query += ` FOR SHARE`
	}

	e, err := scanElection(q.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Election{}, notFound(err, "election")
	}
	return e, nil
}

// GetActiveElection returns the single active election, or ErrNotFound.
func (q *Queries) GetActiveElection(ctx context.Context) (models.Election, error) {
	e, err := scanElection(q.q.QueryRowContext(ctx, `
		SELECT `+electionColumns+` FROM election WHERE is_active = $1
	`, true))
	if err != nil {
		return models.Election{}, notFound(err, "active election")
	}
	return e, nil
}

// UpdatePhase moves an election from one phase to another. The update only
// applies while the stored phase still equals from; otherwise it returns
// ErrPhaseConflict.
func (q *Queries) UpdatePhase(ctx context.Context, id string, from, to models.Phase) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE election SET current_phase = $1 WHERE id = $2 AND current_phase = $3
	`, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("update phase: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update phase: %w", err)
	}
	if n == 0 {
		return ErrPhaseConflict
	}
	return nil
}

// SetElectionActive flags or unflags the election as the live one. Activating
// while another election is active returns ErrActiveElectionExists.
func (q *Queries) SetElectionActive(ctx context.Context, id string, active bool) error {
	res, err := q.q.ExecContext(ctx, `UPDATE election SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		if active && db.IsUniqueViolation(err) {
			return ErrActiveElectionExists
		}
		return fmt.Errorf("update election: %w", err)
	}
	return requireRow(res, "election")
}

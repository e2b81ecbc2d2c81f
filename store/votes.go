// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/quickly-elect/models"
)

// InsertDelegateVote records a delegate vote. A second vote by the same voter
// in the same election returns ErrDuplicate.
func (q *Queries) InsertDelegateVote(ctx context.Context, v models.DelegateVote) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO delegate_vote (id, election_id, voter_id, delegate_id, voter_ip, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, v.ElectionID, v.VoterID, v.DelegateID, v.VoterIP, v.CastAt)
	if err != nil {
		return insertErr(err, "delegate vote")
	}
	return nil
}

// InsertMainVote records a main vote. A second vote by the same delegate for
// the same position in the same election returns ErrDuplicate.
func (q *Queries) InsertMainVote(ctx context.Context, v models.MainVote) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO main_vote (id, election_id, delegate_id, candidate_id, position_id, voter_ip, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.ElectionID, v.DelegateID, v.CandidateID, v.PositionID, v.VoterIP, v.CastAt)
	if err != nil {
		return insertErr(err, "main vote")
	}
	return nil
}

func (q *Queries) HasDelegateVote(ctx context.Context, electionID, voterID string) (bool, error) {
	found, err := q.exists(ctx, `
		SELECT 1 FROM delegate_vote WHERE election_id = $1 AND voter_id = $2
	`, electionID, voterID)
	if err != nil {
		return false, fmt.Errorf("check delegate vote: %w", err)
	}
	return found, nil
}

func (q *Queries) HasMainVote(ctx context.Context, electionID, delegateID, positionID string) (bool, error) {
	found, err := q.exists(ctx, `
		SELECT 1 FROM main_vote WHERE election_id = $1 AND delegate_id = $2 AND position_id = $3
	`, electionID, delegateID, positionID)
	if err != nil {
		return false, fmt.Errorf("check main vote: %w", err)
	}
	return found, nil
}

// CountMainVotes returns how many positions a delegate has voted for.
func (q *Queries) CountMainVotes(ctx context.Context, electionID, delegateID string) (int, error) {
	n, err := q.count(ctx, `
		SELECT COUNT(*) FROM main_vote WHERE election_id = $1 AND delegate_id = $2
	`, electionID, delegateID)
	if err != nil {
		return 0, fmt.Errorf("count main votes: %w", err)
	}
	return n, nil
}

func (q *Queries) ListDelegateVotes(ctx context.Context, electionID string) ([]models.DelegateVote, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT id, election_id, voter_id, delegate_id, voter_ip, cast_at
		FROM delegate_vote WHERE election_id = $1
		ORDER BY id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("list delegate votes: %w", err)
	}
	defer rows.Close()

	var votes []models.DelegateVote
	for rows.Next() {
		var v models.DelegateVote
		if err := rows.Scan(&v.ID, &v.ElectionID, &v.VoterID, &v.DelegateID, &v.VoterIP, &v.CastAt); err != nil {
			return nil, fmt.Errorf("scan delegate vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (q *Queries) ListMainVotes(ctx context.Context, electionID string) ([]models.MainVote, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT id, election_id, delegate_id, candidate_id, position_id, voter_ip, cast_at
		FROM main_vote WHERE election_id = $1
		ORDER BY id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("list main votes: %w", err)
	}
	defer rows.Close()

	var votes []models.MainVote
	for rows.Next() {
		var v models.MainVote
		if err := rows.Scan(&v.ID, &v.ElectionID, &v.DelegateID, &v.CandidateID, &v.PositionID,
			&v.VoterIP, &v.CastAt); err != nil {
			return nil, fmt.Errorf("scan main vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

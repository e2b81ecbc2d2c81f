// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/quickly-elect/models"
)

// ReplaceResults rewrites the cached results of an election. Call it inside
// a transaction so readers never see a partial cache.
func (q *Queries) ReplaceResults(ctx context.Context, electionID string, rows []models.ElectionResult) error {
	if _, err := q.q.ExecContext(ctx, `DELETE FROM election_result WHERE election_id = $1`, electionID); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}

	for _, r := range rows {
		_, err := q.q.ExecContext(ctx, `
			INSERT INTO election_result (election_id, candidate_id, vote_count, percentage, is_winner, computed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, electionID, r.CandidateID, r.VoteCount, r.Percentage, r.IsWinner, r.ComputedAt)
		if err != nil {
			return insertErr(err, "election result")
		}
	}
	return nil
}

func (q *Queries) ListResults(ctx context.Context, electionID string) ([]models.ElectionResult, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT election_id, candidate_id, vote_count, percentage, is_winner, computed_at
		FROM election_result WHERE election_id = $1
		ORDER BY vote_count DESC, candidate_id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []models.ElectionResult
	for rows.Next() {
		var r models.ElectionResult
		if err := rows.Scan(&r.ElectionID, &r.CandidateID, &r.VoteCount, &r.Percentage, &r.IsWinner,
			&r.ComputedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

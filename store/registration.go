// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/quickly-elect/models"
)

// Delegates

const delegateSelect = `
	SELECT dl.id, dl.voter_id, dl.party_id, dl.department_id, dl.is_approved, dl.created_at,
		v.first_name || ' ' || v.last_name, p.acronym
	FROM delegate dl
	JOIN voter v ON v.id = dl.voter_id
	JOIN party p ON p.id = dl.party_id
`

func scanDelegate(row interface{ Scan(...any) error }) (models.Delegate, error) {
	var d models.Delegate
	err := row.Scan(&d.ID, &d.VoterID, &d.PartyID, &d.DepartmentID, &d.IsApproved, &d.CreatedAt,
		&d.VoterName, &d.PartyAcronym)
	return d, err
}

func (q *Queries) InsertDelegate(ctx context.Context, d models.Delegate) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO delegate (id, voter_id, party_id, department_id, is_approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.ID, d.VoterID, d.PartyID, d.DepartmentID, d.IsApproved, d.CreatedAt)
	if err != nil {
		return insertErr(err, "delegate")
	}
	return nil
}

func (q *Queries) GetDelegate(ctx context.Context, id string) (models.Delegate, error) {
	d, err := scanDelegate(q.q.QueryRowContext(ctx, delegateSelect+` WHERE dl.id = $1`, id))
	if err != nil {
		return models.Delegate{}, notFound(err, "delegate")
	}
	return d, nil
}

// GetDelegateByVoter returns the delegate profile of a voter, or ErrNotFound
// when the voter is not a delegate.
func (q *Queries) GetDelegateByVoter(ctx context.Context, voterID string) (models.Delegate, error) {
	d, err := scanDelegate(q.q.QueryRowContext(ctx, delegateSelect+` WHERE dl.voter_id = $1`, voterID))
	if err != nil {
		return models.Delegate{}, notFound(err, "delegate")
	}
	return d, nil
}

// ListApprovedDelegates returns approved delegates of one department, or of
// every department when departmentID is empty.
func (q *Queries) ListApprovedDelegates(ctx context.Context, departmentID string) ([]models.Delegate, error) {
	rows, err := q.q.QueryContext(ctx, delegateSelect+`
		WHERE dl.is_approved = $1 AND ($2 = '' OR dl.department_id = $2)
		ORDER BY p.acronym, dl.id
	`, true, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list delegates: %w", err)
	}
	defer rows.Close()

	var delegates []models.Delegate
	for rows.Next() {
		d, err := scanDelegate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delegate: %w", err)
		}
		delegates = append(delegates, d)
	}
	return delegates, rows.Err()
}

func (q *Queries) SetDelegateApproval(ctx context.Context, id string, approved bool) error {
	res, err := q.q.ExecContext(ctx, `UPDATE delegate SET is_approved = $1 WHERE id = $2`, approved, id)
	if err != nil {
		return fmt.Errorf("update delegate: %w", err)
	}
	return requireRow(res, "delegate")
}

// CountPartyDepartmentDelegates counts approved and pending delegates for a
// (party, department) pair, ignoring excludeID.
func (q *Queries) CountPartyDepartmentDelegates(ctx context.Context, partyID, departmentID, excludeID string) (int, error) {
	n, err := q.count(ctx, `
		SELECT COUNT(*) FROM delegate
		WHERE party_id = $1 AND department_id = $2 AND id <> $3
	`, partyID, departmentID, excludeID)
	if err != nil {
		return 0, fmt.Errorf("count department delegates: %w", err)
	}
	return n, nil
}

// CountPartyDelegates counts approved and pending delegates for a party across
// all departments, ignoring excludeID.
func (q *Queries) CountPartyDelegates(ctx context.Context, partyID, excludeID string) (int, error) {
	n, err := q.count(ctx, `
		SELECT COUNT(*) FROM delegate WHERE party_id = $1 AND id <> $2
	`, partyID, excludeID)
	if err != nil {
		return 0, fmt.Errorf("count party delegates: %w", err)
	}
	return n, nil
}

// Candidates

const candidateSelect = `
	SELECT c.id, c.voter_id, c.party_id, c.position_id, c.manifesto, c.is_approved, c.created_at,
		v.first_name || ' ' || v.last_name, p.acronym
	FROM candidate c
	JOIN voter v ON v.id = c.voter_id
	JOIN party p ON p.id = c.party_id
`

func scanCandidate(row interface{ Scan(...any) error }) (models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.VoterID, &c.PartyID, &c.PositionID, &c.Manifesto, &c.IsApproved, &c.CreatedAt,
		&c.VoterName, &c.PartyAcronym)
	return c, err
}

func (q *Queries) InsertCandidate(ctx context.Context, c models.Candidate) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO candidate (id, voter_id, party_id, position_id, manifesto, is_approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.VoterID, c.PartyID, c.PositionID, c.Manifesto, c.IsApproved, c.CreatedAt)
	if err != nil {
		return insertErr(err, "candidate")
	}
	return nil
}

func (q *Queries) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	c, err := scanCandidate(q.q.QueryRowContext(ctx, candidateSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return models.Candidate{}, notFound(err, "candidate")
	}
	return c, nil
}

// ListApprovedCandidates returns approved candidates for one position, or for
// every position when positionID is empty.
func (q *Queries) ListApprovedCandidates(ctx context.Context, positionID string) ([]models.Candidate, error) {
	rows, err := q.q.QueryContext(ctx, candidateSelect+`
		WHERE c.is_approved = $1 AND ($2 = '' OR c.position_id = $2)
		ORDER BY p.acronym, c.id
	`, true, positionID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (q *Queries) SetCandidateApproval(ctx context.Context, id string, approved bool) error {
	res, err := q.q.ExecContext(ctx, `UPDATE candidate SET is_approved = $1 WHERE id = $2`, approved, id)
	if err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	return requireRow(res, "candidate")
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/quickly-elect/models"
)

// AppendAudit inserts an audit record. The audit log has no update or delete.
func (q *Queries) AppendAudit(ctx context.Context, e models.AuditEntry) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO audit_log (id, voter_id, action, description, ip_address, user_agent, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.VoterID, e.Action, e.Description, e.IPAddress, e.UserAgent, e.Success, e.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// ListAuditEntries returns audit records, newest first. Empty filters match
// everything.
func (q *Queries) ListAuditEntries(ctx context.Context, action, voterID string) ([]models.AuditEntry, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT id, voter_id, action, description, ip_address, user_agent, success, created_at
		FROM audit_log
		WHERE ($1 = '' OR action = $1) AND ($2 = '' OR voter_id = $2)
		ORDER BY created_at DESC, id
	`, action, voterID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.VoterID, &e.Action, &e.Description, &e.IPAddress, &e.UserAgent,
			&e.Success, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

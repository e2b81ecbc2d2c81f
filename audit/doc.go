// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit writes the append-only audit trail.

Every vote, vote attempt, login, logout, phase change, and registration is
recorded through Logger.Record:

	auditor := audit.New(st, nil)
	auditor.Record(ctx, models.AuditEntry{
		VoterID:     &voterID,
		Action:      models.ActionDelegateVote,
		Description: "Voted for delegate Jane Doe",
		IPAddress:   ip,
		Success:     true,
	})

Record never returns an error and never panics. A failed write is logged,
counted, and sent to the Errors channel so it can be watched without
affecting the action that triggered it.
*/
package audit

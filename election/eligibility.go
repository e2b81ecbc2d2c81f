// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import "github.com/danielhkuo/quickly-elect/models"

// CheckDelegateVote decides whether voter may vote for delegate. voterDept is
// the voter's resolved department; a zero value means the voter has none.
// Duplicate votes are left to the ledger's unique key.
func CheckDelegateVote(voter models.Voter, voterDept models.Department, delegate models.Delegate) error {
	if !voter.IsActive {
		return reject(CodeVoterInactive, "voter account is inactive")
	}
	if !delegate.IsApproved {
		return reject(CodeTargetNotFound, "delegate not found")
	}
	if voterDept.ID == "" || voterDept.ID != delegate.DepartmentID {
		return reject(CodeIneligibleLocality, "you can only vote for delegates in your department")
	}
	return nil
}

// CheckMainVote decides whether voter may vote for candidate. profile is the
// voter's delegate record, or nil when the voter is not a delegate.
func CheckMainVote(voter models.Voter, profile *models.Delegate, candidate models.Candidate) error {
	if !voter.IsActive {
		return reject(CodeVoterInactive, "voter account is inactive")
	}
	if profile == nil {
		return reject(CodeNotADelegate, "only delegates can vote for candidates")
	}
	if !profile.IsApproved {
		return reject(CodeDelegateUnapproved, "your delegate status has not been approved")
	}
	if !candidate.IsApproved {
		return reject(CodeTargetNotFound, "candidate not found")
	}
	return nil
}

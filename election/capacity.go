// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"

	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

// Delegate slot limits. Pending and approved delegates both hold a slot.
const (
	MaxDelegatesPerDepartment = 2
	MaxDelegatesPerParty      = 15
)

// CheckCapacity rejects a delegate when its (party, department) pair or its
// party already holds the maximum. Counts exclude the delegate itself.
func CheckCapacity(departmentCount, partyCount int) error {
	if departmentCount >= MaxDelegatesPerDepartment {
		return reject(CodeCapacityExceeded,
			"party already has %d delegates in this department", MaxDelegatesPerDepartment)
	}
	if partyCount >= MaxDelegatesPerParty {
		return reject(CodeCapacityExceeded,
			"party already has %d delegates", MaxDelegatesPerParty)
	}
	return nil
}

// guardDelegate enforces locality and capacity for d inside tx. The party row
// is locked first so concurrent registrations for one party queue up.
func guardDelegate(ctx context.Context, tx *store.Tx, d models.Delegate) error {
	if err := tx.LockParty(ctx, d.PartyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return reject(CodeTargetNotFound, "party not found")
		}
		return err
	}

	dept, err := tx.ResolveDepartment(ctx, d.VoterID)
	if errors.Is(err, store.ErrNotFound) {
		return reject(CodeIneligibleLocality, "voter has no department")
	}
	if err != nil {
		return err
	}
	if dept.ID != d.DepartmentID {
		return reject(CodeIneligibleLocality, "delegate department must match the voter's department")
	}

	deptCount, err := tx.CountPartyDepartmentDelegates(ctx, d.PartyID, d.DepartmentID, d.ID)
	if err != nil {
		return err
	}
	partyCount, err := tx.CountPartyDelegates(ctx, d.PartyID, d.ID)
	if err != nil {
		return err
	}

	return CheckCapacity(deptCount, partyCount)
}

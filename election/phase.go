// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"time"

	"github.com/danielhkuo/quickly-elect/models"
)

// IsDelegateVotingOpen requires both the delegate_voting phase and a time
// inside the delegate window, bounds included.
func IsDelegateVotingOpen(e models.Election, now time.Time) bool {
	return e.CurrentPhase == models.PhaseDelegateVoting &&
		withinWindow(now, e.DelegateVotingStart, e.DelegateVotingEnd)
}

// IsMainVotingOpen requires both the main_voting phase and a time inside the
// main window, bounds included.
func IsMainVotingOpen(e models.Election, now time.Time) bool {
	return e.CurrentPhase == models.PhaseMainVoting &&
		withinWindow(now, e.MainVotingStart, e.MainVotingEnd)
}

// IsResultsReleasable reports whether tallies may be shown.
func IsResultsReleasable(e models.Election) bool {
	return e.CurrentPhase == models.PhaseResults || e.CurrentPhase == models.PhaseClosed
}

func withinWindow(now, start, end time.Time) bool {
	return !now.Before(start) && !now.After(end)
}

// ValidateTransition allows exactly one step forward.
func ValidateTransition(from, to models.Phase) error {
	if !to.Valid() {
		return reject(CodeInvalidRequest, "unknown phase %q", to)
	}
	next, ok := from.Next()
	if !ok || next != to {
		return reject(CodeInvalidTransition, "cannot move from %s to %s", from, to)
	}
	return nil
}

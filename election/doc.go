// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election implements the voting core: phase gates, eligibility,
delegate capacity, the vote ledger, and result tallies.

# Phases

An election moves forward one step at a time:

	registration → delegate_voting → main_voting → results → closed

Delegate voting is open only while the phase is delegate_voting and the
clock is inside the delegate window. Main voting works the same way with its
own phase and window. Results are released in the results and closed phases.
AdvancePhase is the only operation that changes the phase.

# Casting Votes

CastDelegateVote and CastMainVote follow the same steps:

 1. Load the election and require it to be active (NoActiveElection)
 2. Check the phase and window (PhaseClosed)
 3. Load the approved target (TargetNotFound)
 4. Check eligibility (VoterInactive, IneligibleLocality, NotADelegate, DelegateUnapproved)
 5. Insert under the unique key in a transaction (AlreadyVoted, Contention)
 6. Record an audit entry
 7. Return the stored vote

A voter casts one delegate vote per election, for a delegate in the voter's
own department. A delegate casts one main vote per position per election.
The database unique keys decide duplicates; the pre-check only produces an
earlier error.

# Rejections

Every refusal is a *VoteError with a Code. Errors of any other type are
infrastructure failures:

	vote, err := svc.CastDelegateVote(ctx, req)
	switch election.CodeOf(err) {
	case election.CodeAlreadyVoted:
		// ...
	}

# Delegate Capacity

A party holds at most MaxDelegatesPerDepartment delegates in one department
and MaxDelegatesPerParty overall. Registration and approval count existing
delegates inside the writing transaction, after locking the party row.

# Tallies

Results counts main votes per position and delegate votes per department.
Percentages are count/total*100 and 0 when a position has no votes. Every
candidate sharing the highest non-zero count is a winner. Rows are ordered
by count, then ID, so recomputing yields the same output. InputsHash
fingerprints the counted vote IDs.
*/
package election

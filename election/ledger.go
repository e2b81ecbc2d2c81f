// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

type DelegateVoteRequest struct {
	ElectionID string
	VoterID    string
	DelegateID string
	Source     Source
}

type MainVoteRequest struct {
	ElectionID  string
	VoterID     string
	CandidateID string
	Source      Source
}

// CastDelegateVote records voter's single delegate vote for the election.
// Rejections are returned as *VoteError; any other error is a store failure.
func (s *Service) CastDelegateVote(ctx context.Context, req DelegateVoteRequest) (models.DelegateVote, error) {
	vote, err := s.castDelegateVote(ctx, req)
	if err != nil {
		s.recordRejection(ctx, req.VoterID, req.Source, "delegate", err)
		return models.DelegateVote{}, err
	}

	s.audit.Record(ctx, models.AuditEntry{
		VoterID:     &req.VoterID,
		Action:      models.ActionDelegateVote,
		Description: "Voted for delegate " + vote.DelegateID,
		IPAddress:   req.Source.IP,
		UserAgent:   req.Source.UserAgent,
		Success:     true,
	})
	s.log.Info("delegate vote cast",
		"election_id", vote.ElectionID,
		"vote_id", vote.ID,
		"delegate_id", vote.DelegateID,
	)

	return vote, nil
}

func (s *Service) castDelegateVote(ctx context.Context, req DelegateVoteRequest) (models.DelegateVote, error) {
	e, err := s.loadActive(ctx, req.ElectionID)
	if err != nil {
		return models.DelegateVote{}, err
	}

	now := s.clock.Now()
	if !IsDelegateVotingOpen(e, now) {
		return models.DelegateVote{}, reject(CodePhaseClosed, "delegate voting is not currently open")
	}

	delegate, err := s.store.GetDelegate(ctx, req.DelegateID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !delegate.IsApproved) {
		return models.DelegateVote{}, reject(CodeTargetNotFound, "delegate not found")
	}
	if err != nil {
		return models.DelegateVote{}, err
	}

	voter, err := s.voter(ctx, req.VoterID)
	if err != nil {
		return models.DelegateVote{}, err
	}

	dept, err := s.store.ResolveDepartment(ctx, voter.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return models.DelegateVote{}, err
	}
	if err := CheckDelegateVote(voter, dept, delegate); err != nil {
		return models.DelegateVote{}, err
	}

	// Fast path only; the unique key below is the real guard.
	voted, err := s.store.HasDelegateVote(ctx, e.ID, voter.ID)
	if err != nil {
		return models.DelegateVote{}, err
	}
	if voted {
		return models.DelegateVote{}, reject(CodeAlreadyVoted, "you have already voted for a delegate in this election")
	}

	vote := models.DelegateVote{
		ID:         uuid.NewString(),
		ElectionID: e.ID,
		VoterID:    voter.ID,
		DelegateID: delegate.ID,
		VoterIP:    req.Source.IP,
		CastAt:     now,
	}

	err = s.store.InTx(ctx, func(tx *store.Tx) error {
		err := recheckGate(ctx, tx, e.ID, func(e models.Election) bool {
			return IsDelegateVotingOpen(e, now)
		}, "delegate voting is not currently open")
		if err != nil {
			return err
		}

		d, err := tx.GetDelegate(ctx, delegate.ID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !d.IsApproved) {
			return reject(CodeTargetNotFound, "delegate not found")
		}
		if err != nil {
			return err
		}

		err = tx.InsertDelegateVote(ctx, vote)
		if errors.Is(err, store.ErrDuplicate) {
			return reject(CodeAlreadyVoted, "you have already voted for a delegate in this election")
		}
		return err
	})
	if err != nil {
		return models.DelegateVote{}, txErr(err)
	}

	return vote, nil
}

// CastMainVote records a delegate's vote for one candidate. A delegate votes
// at most once per position per election.
func (s *Service) CastMainVote(ctx context.Context, req MainVoteRequest) (models.MainVote, error) {
	vote, err := s.castMainVote(ctx, req)
	if err != nil {
		s.recordRejection(ctx, req.VoterID, req.Source, "main", err)
		return models.MainVote{}, err
	}

	s.audit.Record(ctx, models.AuditEntry{
		VoterID:     &req.VoterID,
		Action:      models.ActionMainVote,
		Description: fmt.Sprintf("Voted for candidate %s (position %s)", vote.CandidateID, vote.PositionID),
		IPAddress:   req.Source.IP,
		UserAgent:   req.Source.UserAgent,
		Success:     true,
	})
	s.log.Info("main vote cast",
		"election_id", vote.ElectionID,
		"vote_id", vote.ID,
		"candidate_id", vote.CandidateID,
		"position_id", vote.PositionID,
	)

	return vote, nil
}

func (s *Service) castMainVote(ctx context.Context, req MainVoteRequest) (models.MainVote, error) {
	e, err := s.loadActive(ctx, req.ElectionID)
	if err != nil {
		return models.MainVote{}, err
	}

	now := s.clock.Now()
	if !IsMainVotingOpen(e, now) {
		return models.MainVote{}, reject(CodePhaseClosed, "main voting is not currently open")
	}

	candidate, err := s.store.GetCandidate(ctx, req.CandidateID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !candidate.IsApproved) {
		return models.MainVote{}, reject(CodeTargetNotFound, "candidate not found")
	}
	if err != nil {
		return models.MainVote{}, err
	}

	voter, err := s.voter(ctx, req.VoterID)
	if err != nil {
		return models.MainVote{}, err
	}

	var profile *models.Delegate
	d, err := s.store.GetDelegateByVoter(ctx, voter.ID)
	switch {
	case err == nil:
		profile = &d
	case !errors.Is(err, store.ErrNotFound):
		return models.MainVote{}, err
	}
	if err := CheckMainVote(voter, profile, candidate); err != nil {
		return models.MainVote{}, err
	}

	voted, err := s.store.HasMainVote(ctx, e.ID, profile.ID, candidate.PositionID)
	if err != nil {
		return models.MainVote{}, err
	}
	if voted {
		return models.MainVote{}, reject(CodeAlreadyVoted, "you have already voted for this position")
	}

	vote := models.MainVote{
		ID:          uuid.NewString(),
		ElectionID:  e.ID,
		DelegateID:  profile.ID,
		CandidateID: candidate.ID,
		VoterIP:     req.Source.IP,
		CastAt:      now,
	}

	err = s.store.InTx(ctx, func(tx *store.Tx) error {
		err := recheckGate(ctx, tx, e.ID, func(e models.Election) bool {
			return IsMainVotingOpen(e, now)
		}, "main voting is not currently open")
		if err != nil {
			return err
		}

		p, err := tx.GetDelegate(ctx, profile.ID)
		if errors.Is(err, store.ErrNotFound) {
			return reject(CodeNotADelegate, "only delegates can vote for candidates")
		}
		if err != nil {
			return err
		}
		if !p.IsApproved {
			return reject(CodeDelegateUnapproved, "your delegate status has not been approved")
		}

		// The position is read in the same transaction as the insert so the
		// unique (election, delegate, position) key sees the current value.
		c, err := tx.GetCandidate(ctx, candidate.ID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !c.IsApproved) {
			return reject(CodeTargetNotFound, "candidate not found")
		}
		if err != nil {
			return err
		}
		vote.PositionID = c.PositionID

		err = tx.InsertMainVote(ctx, vote)
		if errors.Is(err, store.ErrDuplicate) {
			return reject(CodeAlreadyVoted, "you have already voted for this position")
		}
		return err
	})
	if err != nil {
		return models.MainVote{}, txErr(err)
	}

	return vote, nil
}

// recheckGate re-reads the election inside the vote's transaction. A phase
// change that committed after the first check closes the vote here.
func recheckGate(ctx context.Context, tx *store.Tx, electionID string, open func(models.Election) bool, closed string) error {
	e, err := tx.ShareElection(ctx, electionID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !e.IsActive) {
		return reject(CodeNoActiveElection, "no active election")
	}
	if err != nil {
		return err
	}
	if !open(e) {
		return reject(CodePhaseClosed, "%s", closed)
	}
	return nil
}

// voter loads the acting voter. An unknown voter is treated as inactive.
func (s *Service) voter(ctx context.Context, id string) (models.Voter, error) {
	v, err := s.store.GetVoter(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Voter{}, reject(CodeVoterInactive, "voter is not enrolled")
	}
	if err != nil {
		return models.Voter{}, err
	}
	return v, nil
}

// recordRejection audits a refused vote and logs it.
func (s *Service) recordRejection(ctx context.Context, voterID string, src Source, kind string, err error) {
	code := CodeOf(err)
	if code == CodeStoreUnavailable {
		s.log.Error("failed to cast vote", "kind", kind, "voter_id", voterID, "error", err)
	} else {
		s.log.Info("vote rejected", "kind", kind, "voter_id", voterID, "code", code)
	}

	s.audit.Record(ctx, models.AuditEntry{
		VoterID:     optionalID(voterID),
		Action:      models.ActionVoteAttempt,
		Description: fmt.Sprintf("Rejected %s vote: %s", kind, code),
		IPAddress:   src.IP,
		UserAgent:   src.UserAgent,
		Success:     false,
	})
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

// Status summarizes the election and where the voter stands in it. It reads
// without locking and may trail concurrent votes.
func (s *Service) Status(ctx context.Context, e models.Election, voterID string) (models.StatusResponse, error) {
	now := s.clock.Now()

	resp := models.StatusResponse{
		Election: models.ElectionStatus{
			ID:                   e.ID,
			Name:                 e.Name,
			CurrentPhase:         e.CurrentPhase,
			DelegateVotingActive: IsDelegateVotingOpen(e, now),
			MainVotingActive:     IsMainVotingOpen(e, now),
			ResultsAvailable:     IsResultsReleasable(e),
		},
	}

	switch {
	case resp.Election.DelegateVotingActive:
		resp.Election.ClosesIn = humanize.RelTime(e.DelegateVotingEnd, now, "ago", "from now")
	case resp.Election.MainVotingActive:
		resp.Election.ClosesIn = humanize.RelTime(e.MainVotingEnd, now, "ago", "from now")
	}

	dept, err := s.store.ResolveDepartment(ctx, voterID)
	switch {
	case err == nil:
		resp.Voter.Department = dept.Name
		resp.Voter.Faculty = dept.FacultyName
	case !errors.Is(err, store.ErrNotFound):
		return models.StatusResponse{}, fmt.Errorf("resolve department: %w", err)
	}

	resp.Voter.HasVotedForDelegate, err = s.store.HasDelegateVote(ctx, e.ID, voterID)
	if err != nil {
		return models.StatusResponse{}, err
	}

	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return models.StatusResponse{}, err
	}
	resp.Voter.TotalPositions = len(positions)

	delegate, err := s.store.GetDelegateByVoter(ctx, voterID)
	switch {
	case err == nil:
		resp.Voter.IsDelegate = delegate.IsApproved
		if delegate.IsApproved {
			resp.Voter.MainVotesCast, err = s.store.CountMainVotes(ctx, e.ID, delegate.ID)
			if err != nil {
				return models.StatusResponse{}, err
			}
		}
	case !errors.Is(err, store.ErrNotFound):
		return models.StatusResponse{}, err
	}

	return resp, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

// TallyPositions counts main votes for the approved candidates of each
// position. Positions keep their given order; candidates are ordered by count
// descending then ID. Every candidate sharing a non-zero top count wins.
// The second value lists the IDs of the votes that were counted.
func TallyPositions(positions []models.Position, candidates []models.Candidate, votes []models.MainVote) ([]models.PositionResult, []string) {
	counts := make(map[string]int, len(candidates))
	byPosition := make(map[string][]models.Candidate)
	for _, c := range candidates {
		counts[c.ID] = 0
		byPosition[c.PositionID] = append(byPosition[c.PositionID], c)
	}

	var counted []string
	for _, v := range votes {
		if _, ok := counts[v.CandidateID]; ok {
			counts[v.CandidateID]++
			counted = append(counted, v.ID)
		}
	}

	results := make([]models.PositionResult, 0, len(positions))
	for _, p := range positions {
		var (
			rows  []models.CandidateTally
			total int
		)
		for _, c := range byPosition[p.ID] {
			total += counts[c.ID]
			rows = append(rows, models.CandidateTally{
				CandidateID:  c.ID,
				VoterName:    c.VoterName,
				PartyAcronym: c.PartyAcronym,
				VoteCount:    counts[c.ID],
			})
		}

		sort.Slice(rows, func(i, j int) bool {
			if rows[i].VoteCount != rows[j].VoteCount {
				return rows[i].VoteCount > rows[j].VoteCount
			}
			return rows[i].CandidateID < rows[j].CandidateID
		})

		top := 0
		if len(rows) > 0 {
			top = rows[0].VoteCount
		}
		for i := range rows {
			rows[i].Percentage = percentage(rows[i].VoteCount, total)
			rows[i].IsWinner = top > 0 && rows[i].VoteCount == top
		}

		results = append(results, models.PositionResult{
			Position:   p,
			Candidates: rows,
			TotalVotes: total,
		})
	}

	return results, counted
}

// TallyDepartments is TallyPositions for delegate votes, grouped by the
// delegate's department.
func TallyDepartments(departments []models.Department, delegates []models.Delegate, votes []models.DelegateVote) ([]models.DepartmentResult, []string) {
	counts := make(map[string]int, len(delegates))
	byDepartment := make(map[string][]models.Delegate)
	for _, d := range delegates {
		counts[d.ID] = 0
		byDepartment[d.DepartmentID] = append(byDepartment[d.DepartmentID], d)
	}

	votesFor := make(map[string][]string)
	for _, v := range votes {
		votesFor[v.DelegateID] = append(votesFor[v.DelegateID], v.ID)
	}

	// Only departments in scope contribute to the counted set.
	var counted []string
	for _, dept := range departments {
		for _, d := range byDepartment[dept.ID] {
			counts[d.ID] = len(votesFor[d.ID])
			counted = append(counted, votesFor[d.ID]...)
		}
	}

	results := make([]models.DepartmentResult, 0, len(departments))
	for _, dept := range departments {
		var (
			rows  []models.DelegateTally
			total int
		)
		for _, d := range byDepartment[dept.ID] {
			total += counts[d.ID]
			rows = append(rows, models.DelegateTally{
				DelegateID:   d.ID,
				VoterName:    d.VoterName,
				PartyAcronym: d.PartyAcronym,
				VoteCount:    counts[d.ID],
			})
		}

		sort.Slice(rows, func(i, j int) bool {
			if rows[i].VoteCount != rows[j].VoteCount {
				return rows[i].VoteCount > rows[j].VoteCount
			}
			return rows[i].DelegateID < rows[j].DelegateID
		})

		top := 0
		if len(rows) > 0 {
			top = rows[0].VoteCount
		}
		for i := range rows {
			rows[i].Percentage = percentage(rows[i].VoteCount, total)
			rows[i].IsWinner = top > 0 && rows[i].VoteCount == top
		}

		results = append(results, models.DepartmentResult{
			Department: dept,
			Delegates:  rows,
			TotalVotes: total,
		})
	}

	return results, counted
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// InputsHash fingerprints the set of counted vote IDs, independent of order.
func InputsHash(voteIDs []string) string {
	ids := append([]string(nil), voteIDs...)
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Results tallies a releasable election. Department tallies cover one faculty,
// or every department when facultyID is empty.
func (s *Service) Results(ctx context.Context, electionID, facultyID string) (models.ElectionResults, error) {
	e, err := s.store.GetElection(ctx, electionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ElectionResults{}, reject(CodeNoActiveElection, "election not found")
	}
	if err != nil {
		return models.ElectionResults{}, fmt.Errorf("load election: %w", err)
	}
	if !IsResultsReleasable(e) {
		return models.ElectionResults{}, reject(CodePhaseClosed, "results are not yet available")
	}

	var (
		positions   []models.PositionResult
		departments []models.DepartmentResult
		mainIDs     []string
		delegateIDs []string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pos, err := s.store.ListPositions(gctx)
		if err != nil {
			return err
		}
		candidates, err := s.store.ListApprovedCandidates(gctx, "")
		if err != nil {
			return err
		}
		votes, err := s.store.ListMainVotes(gctx, e.ID)
		if err != nil {
			return err
		}
		positions, mainIDs = TallyPositions(pos, candidates, votes)
		return nil
	})

	g.Go(func() error {
		depts, err := s.store.ListDepartments(gctx, facultyID)
		if err != nil {
			return err
		}
		delegates, err := s.store.ListApprovedDelegates(gctx, "")
		if err != nil {
			return err
		}
		votes, err := s.store.ListDelegateVotes(gctx, e.ID)
		if err != nil {
			return err
		}
		departments, delegateIDs = TallyDepartments(depts, delegates, votes)
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.ElectionResults{}, fmt.Errorf("tally election: %w", err)
	}

	return models.ElectionResults{
		ElectionID:  e.ID,
		ComputedAt:  s.clock.Now(),
		Positions:   positions,
		Departments: departments,
		InputsHash:  InputsHash(append(mainIDs, delegateIDs...)),
	}, nil
}

// RefreshResults recomputes the tallies and rewrites the cached candidate rows.
func (s *Service) RefreshResults(ctx context.Context, electionID string) (models.ElectionResults, error) {
	results, err := s.Results(ctx, electionID, "")
	if err != nil {
		return models.ElectionResults{}, err
	}

	var rows []models.ElectionResult
	for _, p := range results.Positions {
		for _, c := range p.Candidates {
			rows = append(rows, models.ElectionResult{
				ElectionID:  results.ElectionID,
				CandidateID: c.CandidateID,
				VoteCount:   c.VoteCount,
				Percentage:  c.Percentage,
				IsWinner:    c.IsWinner,
				ComputedAt:  results.ComputedAt,
			})
		}
	}

	err = s.store.InTx(ctx, func(tx *store.Tx) error {
		return tx.ReplaceResults(ctx, electionID, rows)
	})
	if err != nil {
		return models.ElectionResults{}, txErr(err)
	}

	s.log.Info("results refreshed",
		"election_id", electionID,
		"rows", len(rows),
		"inputs_hash", results.InputsHash,
	)
	return results, nil
}

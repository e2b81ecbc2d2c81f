// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

// CreateElection stores a new election in the registration phase and makes
// it the active one.
func (s *Service) CreateElection(ctx context.Context, req models.CreateElectionRequest, src Source) (models.Election, error) {
	if strings.TrimSpace(req.Name) == "" {
		return models.Election{}, reject(CodeInvalidRequest, "name is required")
	}
	if !req.DelegateVotingStart.Before(req.DelegateVotingEnd) || !req.MainVotingStart.Before(req.MainVotingEnd) {
		return models.Election{}, reject(CodeInvalidRequest, "each voting window must start before it ends")
	}
	if req.MainVotingStart.Before(req.DelegateVotingEnd) {
		return models.Election{}, reject(CodeInvalidRequest, "main voting cannot start before delegate voting ends")
	}

	e := models.Election{
		ID:                  uuid.NewString(),
		Name:                strings.TrimSpace(req.Name),
		Description:         req.Description,
		CurrentPhase:        models.PhaseRegistration,
		DelegateVotingStart: req.DelegateVotingStart.UTC(),
		DelegateVotingEnd:   req.DelegateVotingEnd.UTC(),
		MainVotingStart:     req.MainVotingStart.UTC(),
		MainVotingEnd:       req.MainVotingEnd.UTC(),
		IsActive:            true,
		CreatedAt:           s.clock.Now(),
	}

	err := s.store.InsertElection(ctx, e)
	if errors.Is(err, store.ErrActiveElectionExists) {
		return models.Election{}, reject(CodeActiveElectionExists, "another election is already active")
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("create election: %w", err)
	}

	s.audit.Record(ctx, models.AuditEntry{
		Action:      models.ActionPhaseChange,
		Description: fmt.Sprintf("Created election %q in %s", e.Name, e.CurrentPhase),
		IPAddress:   src.IP,
		UserAgent:   src.UserAgent,
		Success:     true,
	})
	s.log.Info("election created", "election_id", e.ID, "name", e.Name)

	return e, nil
}

// AdvancePhase moves the election exactly one phase forward. A concurrent
// advance makes the compare-and-set fail with InvalidTransition. Entering the
// results phase refreshes the cached tallies.
func (s *Service) AdvancePhase(ctx context.Context, electionID string, to models.Phase, src Source) (models.Election, error) {
	e, err := s.store.GetElection(ctx, electionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Election{}, reject(CodeTargetNotFound, "election not found")
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("load election: %w", err)
	}

	if err := ValidateTransition(e.CurrentPhase, to); err != nil {
		s.recordPhaseChange(ctx, e, to, src, false)
		return models.Election{}, err
	}

	err = s.store.UpdatePhase(ctx, e.ID, e.CurrentPhase, to)
	if errors.Is(err, store.ErrPhaseConflict) {
		s.recordPhaseChange(ctx, e, to, src, false)
		return models.Election{}, reject(CodeInvalidTransition, "election phase changed concurrently")
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("advance phase: %w", err)
	}

	from := e.CurrentPhase
	e.CurrentPhase = to
	s.recordPhaseChange(ctx, models.Election{ID: e.ID, Name: e.Name, CurrentPhase: from}, to, src, true)
	s.log.Info("election phase advanced", "election_id", e.ID, "from", from, "to", to)

	if to == models.PhaseResults {
		if _, err := s.RefreshResults(ctx, e.ID); err != nil {
			// The phase change stands; the cache can be refreshed again.
			s.log.Error("failed to refresh results", "election_id", e.ID, "error", err)
		}
	}

	return e, nil
}

func (s *Service) recordPhaseChange(ctx context.Context, e models.Election, to models.Phase, src Source, ok bool) {
	s.audit.Record(ctx, models.AuditEntry{
		Action:      models.ActionPhaseChange,
		Description: fmt.Sprintf("Election %q: %s -> %s", e.Name, e.CurrentPhase, to),
		IPAddress:   src.IP,
		UserAgent:   src.UserAgent,
		Success:     ok,
	})
}

// ArchiveElection clears the active flag of a closed election so a new one
// can be created.
func (s *Service) ArchiveElection(ctx context.Context, electionID string) error {
	e, err := s.store.GetElection(ctx, electionID)
	if errors.Is(err, store.ErrNotFound) {
		return reject(CodeTargetNotFound, "election not found")
	}
	if err != nil {
		return fmt.Errorf("load election: %w", err)
	}
	if e.CurrentPhase != models.PhaseClosed {
		return reject(CodeInvalidTransition, "only closed elections can be archived")
	}

	if err := s.store.SetElectionActive(ctx, e.ID, false); err != nil {
		return fmt.Errorf("archive election: %w", err)
	}
	s.log.Info("election archived", "election_id", e.ID)
	return nil
}

// EnrollVoter adds a voter with a hashed secret.
func (s *Service) EnrollVoter(ctx context.Context, req models.EnrollVoterRequest) (models.Voter, error) {
	if req.RegistrationNumber == "" || req.Secret == "" || req.FirstName == "" || req.LastName == "" {
		return models.Voter{}, reject(CodeInvalidRequest, "registration_number, secret, first_name and last_name are required")
	}

	hash, err := auth.HashSecret(req.Secret)
	if err != nil {
		return models.Voter{}, err
	}

	v := models.Voter{
		ID:                 uuid.NewString(),
		RegistrationNumber: req.RegistrationNumber,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		ProgrammeID:        optionalID(req.ProgrammeID),
		IsActive:           true,
		SecretHash:         hash,
		CreatedAt:          s.clock.Now(),
	}

	err = s.store.InsertVoter(ctx, v)
	if errors.Is(err, store.ErrDuplicate) {
		return models.Voter{}, reject(CodeAlreadyRegistered, "registration number already enrolled")
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("enroll voter: %w", err)
	}
	return v, nil
}

// CreateParty adds a party. Names and acronyms are unique.
func (s *Service) CreateParty(ctx context.Context, req models.CreatePartyRequest) (models.Party, error) {
	if req.Name == "" || req.Acronym == "" {
		return models.Party{}, reject(CodeInvalidRequest, "name and acronym are required")
	}

	p := models.Party{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Acronym:     strings.ToUpper(req.Acronym),
		Description: req.Description,
		ColorCode:   req.ColorCode,
		IsActive:    true,
		CreatedAt:   s.clock.Now(),
	}
	if p.ColorCode == "" {
		p.ColorCode = "#000000"
	}

	err := s.store.InsertParty(ctx, p)
	if errors.Is(err, store.ErrDuplicate) {
		return models.Party{}, reject(CodeAlreadyRegistered, "party name or acronym already taken")
	}
	if err != nil {
		return models.Party{}, fmt.Errorf("create party: %w", err)
	}
	return p, nil
}

// RegisterDelegate creates a pending delegate after the locality and
// capacity checks, all inside one transaction.
func (s *Service) RegisterDelegate(ctx context.Context, req models.RegisterDelegateRequest, src Source) (models.Delegate, error) {
	d := models.Delegate{
		ID:           uuid.NewString(),
		VoterID:      req.VoterID,
		PartyID:      req.PartyID,
		DepartmentID: req.DepartmentID,
		CreatedAt:    s.clock.Now(),
	}

	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.GetVoter(ctx, d.VoterID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return reject(CodeTargetNotFound, "voter not found")
			}
			return err
		}
		if err := guardDelegate(ctx, tx, d); err != nil {
			return err
		}

		err := tx.InsertDelegate(ctx, d)
		if errors.Is(err, store.ErrDuplicate) {
			return reject(CodeAlreadyRegistered, "voter is already a delegate")
		}
		return err
	})

	s.audit.Record(ctx, models.AuditEntry{
		VoterID:     optionalID(req.VoterID),
		Action:      models.ActionDelegateRegistration,
		Description: registrationOutcome("delegate registration", err),
		IPAddress:   src.IP,
		UserAgent:   src.UserAgent,
		Success:     err == nil,
	})
	if err != nil {
		return models.Delegate{}, txErr(err)
	}

	s.log.Info("delegate registered", "delegate_id", d.ID, "party_id", d.PartyID, "department_id", d.DepartmentID)
	return s.store.GetDelegate(ctx, d.ID)
}

// ApproveDelegate re-runs the capacity guard and approves the delegate.
func (s *Service) ApproveDelegate(ctx context.Context, delegateID string, src Source) (models.Delegate, error) {
	var voterID string
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		d, err := tx.GetDelegate(ctx, delegateID)
		if errors.Is(err, store.ErrNotFound) {
			return reject(CodeTargetNotFound, "delegate not found")
		}
		if err != nil {
			return err
		}
		voterID = d.VoterID

		if err := guardDelegate(ctx, tx, d); err != nil {
			return err
		}
		return tx.SetDelegateApproval(ctx, d.ID, true)
	})

	s.audit.Record(ctx, models.AuditEntry{
		VoterID:     optionalID(voterID),
		Action:      models.ActionDelegateRegistration,
		Description: registrationOutcome("delegate approval", err),
		IPAddress:   src.IP,
		UserAgent:   src.UserAgent,
		Success:     err == nil,
	})
	if err != nil {
		return models.Delegate{}, txErr(err)
	}

	return s.store.GetDelegate(ctx, delegateID)
}

// RegisterCandidate creates a pending candidacy. A party fields at most one
// candidate per position.
func (s *Service) RegisterCandidate(ctx context.Context, req models.RegisterCandidateRequest, src Source) (models.Candidate, error) {
	c, err := s.registerCandidate(ctx, req)

	s.audit.Record(ctx, models.AuditEntry{
		VoterID:     optionalID(req.VoterID),
		Action:      models.ActionCandidateRegistration,
		Description: registrationOutcome("candidate registration for "+req.Position, err),
		IPAddress:   src.IP,
		UserAgent:   src.UserAgent,
		Success:     err == nil,
	})
	if err != nil {
		return models.Candidate{}, err
	}
	return c, nil
}

func (s *Service) registerCandidate(ctx context.Context, req models.RegisterCandidateRequest) (models.Candidate, error) {
	pos, err := s.store.GetPositionByName(ctx, req.Position)
	if errors.Is(err, store.ErrNotFound) {
		return models.Candidate{}, reject(CodeTargetNotFound, "unknown position %q", req.Position)
	}
	if err != nil {
		return models.Candidate{}, err
	}

	if _, err := s.store.GetVoter(ctx, req.VoterID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Candidate{}, reject(CodeTargetNotFound, "voter not found")
		}
		return models.Candidate{}, err
	}
	if _, err := s.store.GetParty(ctx, req.PartyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Candidate{}, reject(CodeTargetNotFound, "party not found")
		}
		return models.Candidate{}, err
	}

	c := models.Candidate{
		ID:         uuid.NewString(),
		VoterID:    req.VoterID,
		PartyID:    req.PartyID,
		PositionID: pos.ID,
		Manifesto:  req.Manifesto,
		CreatedAt:  s.clock.Now(),
	}

	err = s.store.InsertCandidate(ctx, c)
	if errors.Is(err, store.ErrDuplicate) {
		return models.Candidate{}, reject(CodeAlreadyRegistered, "party already has a candidate for %s", pos.DisplayName)
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("register candidate: %w", err)
	}

	return s.store.GetCandidate(ctx, c.ID)
}

// ApproveCandidate marks a candidacy approved.
func (s *Service) ApproveCandidate(ctx context.Context, candidateID string, src Source) (models.Candidate, error) {
	err := s.store.SetCandidateApproval(ctx, candidateID, true)
	if errors.Is(err, store.ErrNotFound) {
		err = reject(CodeTargetNotFound, "candidate not found")
	}

	s.audit.Record(ctx, models.AuditEntry{
		Action:      models.ActionCandidateRegistration,
		Description: registrationOutcome("candidate approval "+candidateID, err),
		IPAddress:   src.IP,
		UserAgent:   src.UserAgent,
		Success:     err == nil,
	})
	if err != nil {
		return models.Candidate{}, err
	}

	return s.store.GetCandidate(ctx, candidateID)
}

func registrationOutcome(what string, err error) string {
	if err == nil {
		return what + " succeeded"
	}
	return fmt.Sprintf("%s rejected: %s", what, CodeOf(err))
}

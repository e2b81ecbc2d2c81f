// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

type VotingHandler struct {
	svc   *election.Service
	store *store.Store
}

func NewVotingHandler(svc *election.Service, st *store.Store) *VotingHandler {
	return &VotingHandler{svc: svc, store: st}
}

// CastDelegateVote handles POST /api/votes/delegate
func (h *VotingHandler) CastDelegateVote(w http.ResponseWriter, r *http.Request) {
	var req models.CastDelegateVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.DelegateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "delegate_id is required")
		return
	}

	e, err := h.svc.ActiveElection(r.Context())
	if err != nil {
		writeError(w, err, "delegate vote")
		return
	}

	vote, err := h.svc.CastDelegateVote(r.Context(), election.DelegateVoteRequest{
		ElectionID: e.ID,
		VoterID:    middleware.VoterID(r),
		DelegateID: req.DelegateID,
		Source:     sourceOf(r),
	})
	if err != nil {
		writeError(w, err, "delegate vote")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{
		VoteID:  vote.ID,
		CastAt:  vote.CastAt,
		Message: "Delegate vote recorded",
	})
}

// CastMainVote handles POST /api/votes/main
func (h *VotingHandler) CastMainVote(w http.ResponseWriter, r *http.Request) {
	var req models.CastMainVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	e, err := h.svc.ActiveElection(r.Context())
	if err != nil {
		writeError(w, err, "main vote")
		return
	}

	vote, err := h.svc.CastMainVote(r.Context(), election.MainVoteRequest{
		ElectionID:  e.ID,
		VoterID:     middleware.VoterID(r),
		CandidateID: req.CandidateID,
		Source:      sourceOf(r),
	})
	if err != nil {
		writeError(w, err, "main vote")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{
		VoteID:  vote.ID,
		CastAt:  vote.CastAt,
		Message: "Main vote recorded",
	})
}

// Status handles GET /api/status
func (h *VotingHandler) Status(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.ActiveElection(r.Context())
	if err != nil {
		writeError(w, err, "status")
		return
	}

	status, err := h.svc.Status(r.Context(), e, middleware.VoterID(r))
	if err != nil {
		writeError(w, err, "status")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, status)
}

// ListDelegates handles GET /api/delegates
// Returns the approved delegates standing in the caller's department.
func (h *VotingHandler) ListDelegates(w http.ResponseWriter, r *http.Request) {
	dept, err := h.store.ResolveDepartment(r.Context(), middleware.VoterID(r))
	if errors.Is(err, store.ErrNotFound) {
		middleware.CodedErrorResponse(w, http.StatusForbidden, string(election.CodeIneligibleLocality),
			"Your account is not linked to a department")
		return
	}
	if err != nil {
		writeError(w, err, "list delegates")
		return
	}

	delegates, err := h.store.ListApprovedDelegates(r.Context(), dept.ID)
	if err != nil {
		writeError(w, err, "list delegates")
		return
	}
	if delegates == nil {
		delegates = []models.Delegate{}
	}

	middleware.JSONResponse(w, http.StatusOK, delegates)
}

// ListCandidates handles GET /api/candidates?position=name
// Without a position every approved candidate is returned.
func (h *VotingHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	var positionID string
	if name := r.URL.Query().Get("position"); name != "" {
		pos, err := h.store.GetPositionByName(r.Context(), name)
		if errors.Is(err, store.ErrNotFound) {
			middleware.CodedErrorResponse(w, http.StatusNotFound, string(election.CodeTargetNotFound), "Unknown position")
			return
		}
		if err != nil {
			writeError(w, err, "list candidates")
			return
		}
		positionID = pos.ID
	}

	candidates, err := h.store.ListApprovedCandidates(r.Context(), positionID)
	if err != nil {
		writeError(w, err, "list candidates")
		return
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// ListPositions handles GET /api/positions
func (h *VotingHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.store.ListPositions(r.Context())
	if err != nil {
		writeError(w, err, "list positions")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, positions)
}

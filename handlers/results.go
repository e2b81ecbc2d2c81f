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

type ResultsHandler struct {
	svc   *election.Service
	store *store.Store
	admin *AdminHandler
}

func NewResultsHandler(svc *election.Service, st *store.Store, admin *AdminHandler) *ResultsHandler {
	return &ResultsHandler{svc: svc, store: st, admin: admin}
}

// GetResults handles GET /api/results
// Voters see every position and the departments of their own faculty.
// Results stay sealed until the election reaches the results phase.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.ActiveElection(r.Context())
	if err != nil {
		writeError(w, err, "results")
		return
	}

	dept, err := h.store.ResolveDepartment(r.Context(), middleware.VoterID(r))
	if errors.Is(err, store.ErrNotFound) {
		middleware.CodedErrorResponse(w, http.StatusForbidden, string(election.CodeIneligibleLocality),
			"Your account is not linked to a department")
		return
	}
	if err != nil {
		writeError(w, err, "results")
		return
	}

	results, err := h.svc.Results(r.Context(), e.ID, dept.FacultyID)
	if err != nil {
		writeError(w, err, "results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// GetElectionResults handles GET /admin/elections/{id}/results
// Covers every department.
func (h *ResultsHandler) GetElectionResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !h.admin.authorize(w, r, electionID) {
		return
	}

	results, err := h.svc.Results(r.Context(), electionID, "")
	if err != nil {
		writeError(w, err, "election results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// RefreshResults handles POST /admin/elections/{id}/results/refresh
func (h *ResultsHandler) RefreshResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !h.admin.authorize(w, r, electionID) {
		return
	}

	results, err := h.svc.RefreshResults(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "refresh results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// GetCachedResults handles GET /admin/elections/{id}/results/cache
// Returns the stored candidate rows written by the last refresh.
func (h *ResultsHandler) GetCachedResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !h.admin.authorize(w, r, electionID) {
		return
	}

	rows, err := h.store.ListResults(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "cached results")
		return
	}
	if rows == nil {
		rows = []models.ElectionResult{}
	}

	middleware.JSONResponse(w, http.StatusOK, rows)
}

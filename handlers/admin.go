// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

type AdminHandler struct {
	svc   *election.Service
	store *store.Store
	cfg   cliparse.Config
}

func NewAdminHandler(svc *election.Service, st *store.Store, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{svc: svc, store: st, cfg: cfg}
}

// authorize checks the X-Admin-Key header. The root key opens everything;
// an election key opens that election only. Pass "" for operations that are
// not tied to one election, which then accept the active election's key.
func (h *AdminHandler) authorize(w http.ResponseWriter, r *http.Request, electionID string) bool {
	if electionID == "" {
		if e, err := h.store.GetActiveElection(r.Context()); err == nil {
			electionID = e.ID
		}
	}

	key := r.Header.Get(middleware.AdminKeyHeader)
	if err := auth.ValidateAdminKey(electionID, key, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

// CreateElection handles POST /admin/elections
// Requires the root admin key. The response carries the new election's key.
func (h *AdminHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(middleware.AdminKeyHeader)
	if err := auth.ValidateAdminKey("", key, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	e, err := h.svc.CreateElection(r.Context(), req, sourceOf(r))
	if err != nil {
		writeError(w, err, "create election")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: e.ID,
		AdminKey:   auth.GenerateAdminKey(e.ID, h.cfg.AdminKeySalt),
	})
}

// GetElection handles GET /admin/elections/{id}
func (h *AdminHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !h.authorize(w, r, electionID) {
		return
	}

	e, err := h.store.GetElection(r.Context(), electionID)
	if err != nil {
		writeError(w, notFoundAs(err, "Election not found"), "get election")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, e)
}

// AdvancePhase handles POST /admin/elections/{id}/phase
func (h *AdminHandler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !h.authorize(w, r, electionID) {
		return
	}

	var req models.AdvancePhaseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !req.To.Valid() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "to must be a known phase")
		return
	}

	e, err := h.svc.AdvancePhase(r.Context(), electionID, req.To, sourceOf(r))
	if err != nil {
		writeError(w, err, "advance phase")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, e)
}

// ArchiveElection handles POST /admin/elections/{id}/archive
func (h *AdminHandler) ArchiveElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !h.authorize(w, r, electionID) {
		return
	}

	if err := h.svc.ArchiveElection(r.Context(), electionID); err != nil {
		writeError(w, err, "archive election")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EnrollVoter handles POST /admin/voters
func (h *AdminHandler) EnrollVoter(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "") {
		return
	}

	var req models.EnrollVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	v, err := h.svc.EnrollVoter(r.Context(), req)
	if err != nil {
		writeError(w, err, "enroll voter")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: v.ID})
}

// DeactivateVoter handles POST /admin/voters/{id}/deactivate
func (h *AdminHandler) DeactivateVoter(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "") {
		return
	}

	if err := h.store.SetVoterActive(r.Context(), r.PathValue("id"), false); err != nil {
		writeError(w, notFoundAs(err, "Voter not found"), "deactivate voter")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateParty handles POST /admin/parties
func (h *AdminHandler) CreateParty(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "") {
		return
	}

	var req models.CreatePartyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.svc.CreateParty(r.Context(), req)
	if err != nil {
		writeError(w, err, "create party")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, p)
}

// RegisterDelegate handles POST /admin/delegates
func (h *AdminHandler) RegisterDelegate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "") {
		return
	}

	var req models.RegisterDelegateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.VoterID == "" || req.PartyID == "" || req.DepartmentID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id, party_id and department_id are required")
		return
	}

	d, err := h.svc.RegisterDelegate(r.Context(), req, sourceOf(r))
	if err != nil {
		writeError(w, err, "register delegate")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, d)
}

// ApproveDelegate handles POST /admin/delegates/{id}/approve
func (h *AdminHandler) ApproveDelegate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "") {
		return
	}

	d, err := h.svc.ApproveDelegate(r.Context(), r.PathValue("id"), sourceOf(r))
	if err != nil {
		writeError(w, err, "approve delegate")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, d)
}

// RegisterCandidate handles POST /admin/candidates
func (h *AdminHandler) RegisterCandidate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "") {
		return
	}

	var req models.RegisterCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.VoterID == "" || req.PartyID == "" || req.Position == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id, party_id and position are required")
		return
	}

	c, err := h.svc.RegisterCandidate(r.Context(), req, sourceOf(r))
	if err != nil {
		writeError(w, err, "register candidate")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, c)
}

// ApproveCandidate handles POST /admin/candidates/{id}/approve
func (h *AdminHandler) ApproveCandidate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "") {
		return
	}

	c, err := h.svc.ApproveCandidate(r.Context(), r.PathValue("id"), sourceOf(r))
	if err != nil {
		writeError(w, err, "approve candidate")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, c)
}

// ListDepartments handles GET /admin/departments?faculty_id=
func (h *AdminHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "") {
		return
	}

	depts, err := h.store.ListDepartments(r.Context(), r.URL.Query().Get("faculty_id"))
	if err != nil {
		writeError(w, err, "list departments")
		return
	}
	if depts == nil {
		depts = []models.Department{}
	}

	middleware.JSONResponse(w, http.StatusOK, depts)
}

// ListAudit handles GET /admin/audit?action=&voter_id=
func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "") {
		return
	}

	q := r.URL.Query()
	entries, err := h.store.ListAuditEntries(r.Context(), q.Get("action"), q.Get("voter_id"))
	if err != nil {
		writeError(w, err, "list audit")
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}

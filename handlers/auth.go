// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-elect/audit"
	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
	"github.com/danielhkuo/quickly-elect/throttle"
)

type AuthHandler struct {
	store    *store.Store
	authn    *auth.Authenticator
	throttle *throttle.Throttle
	audit    *audit.Logger
	cfg      cliparse.Config
	now      func() time.Time
}

func NewAuthHandler(st *store.Store, authn *auth.Authenticator, th *throttle.Throttle,
	auditor *audit.Logger, cfg cliparse.Config, now func() time.Time) *AuthHandler {
	return &AuthHandler{store: st, authn: authn, throttle: th, audit: auditor, cfg: cfg, now: now}
}

// Login handles POST /api/auth/login
// Failed attempts are throttled per client IP.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.RegistrationNumber == "" || req.Secret == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "registration_number and secret are required")
		return
	}

	src := sourceOf(r)
	attempt := models.AuditEntry{
		Action:    models.ActionLoginAttempt,
		IPAddress: src.IP,
		UserAgent: src.UserAgent,
	}

	if h.throttle.TooManyAttempts(src.IP) {
		attempt.Description = "Login blocked after too many failed attempts: " + req.RegistrationNumber
		h.audit.Record(r.Context(), attempt)
		middleware.ErrorResponse(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
		return
	}

	voter, err := h.authn.Verify(r.Context(), req.RegistrationNumber, req.Secret)
	switch {
	case errors.Is(err, auth.ErrAuthFailed):
		failures := h.throttle.RecordFailure(src.IP)
		attempt.Description = "Failed login for " + req.RegistrationNumber
		h.audit.Record(r.Context(), attempt)
		slog.Warn("login failed", "ip", src.IP, "failures", failures)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid registration number or secret")
		return
	case errors.Is(err, auth.ErrInactive):
		attempt.VoterID = &voter.ID
		attempt.Description = "Login by inactive voter " + req.RegistrationNumber
		h.audit.Record(r.Context(), attempt)
		middleware.CodedErrorResponse(w, http.StatusForbidden, string(election.CodeVoterInactive), "Voter account is inactive")
		return
	case err != nil:
		writeError(w, err, "login")
		return
	}

	h.throttle.Clear(src.IP)
	if err := h.store.UpdateLastLoginIP(r.Context(), voter.ID, src.IP); err != nil {
		slog.Warn("failed to record login IP", "voter_id", voter.ID, "error", err)
	}

	expiresAt := h.now().Add(h.cfg.SessionTTL)
	token := auth.IssueSessionToken(voter.ID, expiresAt, h.cfg.SessionSalt)

	attempt.VoterID = &voter.ID
	attempt.Description = "Successful login"
	attempt.Success = true
	h.audit.Record(r.Context(), attempt)
	slog.Info("voter logged in", "voter_id", voter.ID)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		SessionToken: token,
		ExpiresAt:    expiresAt,
		Voter:        voter,
	})
}

// Logout handles POST /api/auth/logout
// Session tokens are stateless, so logout only leaves an audit record; the
// client discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	voterID := middleware.VoterID(r)
	src := sourceOf(r)

	h.audit.Record(r.Context(), models.AuditEntry{
		VoterID:     &voterID,
		Action:      models.ActionLogout,
		Description: "User logged out",
		IPAddress:   src.IP,
		UserAgent:   src.UserAgent,
		Success:     true,
	})

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

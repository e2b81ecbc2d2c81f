// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/status", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Voter Sessions

RequireVoter checks the "Authorization: Bearer <token>" header against the
session salt and stores the voter ID in the request context:

	requireVoter := middleware.RequireVoter(cfg.SessionSalt, svc.Now)
	mux.HandleFunc("GET /api/status", requireVoter(h.Status))

	voterID := middleware.VoterID(r)

# Network Restriction

RestrictIPs limits vote casting to configured addresses or CIDR prefixes.
Refused requests are audited as security_violation:

	restrict := middleware.RestrictIPs(cfg.AllowedVotingIPs, auditor)

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows headers Content-Type, Authorization and X-Admin-Key.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.CodedErrorResponse(w, http.StatusConflict, "AlreadyVoted", "message")

# Client IP Extraction

	handler := middleware.TrustProxies(cfg.TrustedProxies)(mux)
	ip := middleware.GetClientIP(r)

RemoteAddr is the client unless it is a trusted proxy. Then the nearest
untrusted X-Forwarded-For hop is used, then X-Real-IP.
*/
package middleware

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-elect/audit"
	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/handlers"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/store"
	"github.com/danielhkuo/quickly-elect/throttle"
)

func NewRouter(st *store.Store, svc *election.Service, auditor *audit.Logger, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st, auth.NewAuthenticator(st),
		throttle.New(cfg.MaxLoginAttempts, cfg.LoginLockout), auditor, cfg, svc.Now)
	votingHandler := handlers.NewVotingHandler(svc, st)
	adminHandler := handlers.NewAdminHandler(svc, st, cfg)
	resultsHandler := handlers.NewResultsHandler(svc, st, adminHandler)

	voter := middleware.RequireVoter(cfg.SessionSalt, svc.Now)
	restrict := middleware.RestrictIPs(cfg.AllowedVotingIPs, auditor)
	log := middleware.WithLogging

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			middleware.ErrorResponse(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sessions
	mux.HandleFunc("POST /api/auth/login", log(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", log(voter(authHandler.Logout)))

	// Voting (session required, vote casting limited to allowed networks)
	mux.HandleFunc("GET /api/status", log(voter(votingHandler.Status)))
	mux.HandleFunc("GET /api/positions", log(voter(votingHandler.ListPositions)))
	mux.HandleFunc("GET /api/delegates", log(voter(votingHandler.ListDelegates)))
	mux.HandleFunc("GET /api/candidates", log(voter(votingHandler.ListCandidates)))
	mux.HandleFunc("POST /api/votes/delegate", log(voter(restrict(votingHandler.CastDelegateVote))))
	mux.HandleFunc("POST /api/votes/main", log(voter(restrict(votingHandler.CastMainVote))))
	mux.HandleFunc("GET /api/results", log(voter(resultsHandler.GetResults)))

	// Administration (X-Admin-Key)
	mux.HandleFunc("POST /admin/elections", log(adminHandler.CreateElection))
	mux.HandleFunc("GET /admin/elections/{id}", log(adminHandler.GetElection))
	mux.HandleFunc("POST /admin/elections/{id}/phase", log(adminHandler.AdvancePhase))
	mux.HandleFunc("POST /admin/elections/{id}/archive", log(adminHandler.ArchiveElection))
	mux.HandleFunc("GET /admin/elections/{id}/results", log(resultsHandler.GetElectionResults))
	mux.HandleFunc("POST /admin/elections/{id}/results/refresh", log(resultsHandler.RefreshResults))
	mux.HandleFunc("GET /admin/elections/{id}/results/cache", log(resultsHandler.GetCachedResults))
	mux.HandleFunc("POST /admin/voters", log(adminHandler.EnrollVoter))
	mux.HandleFunc("POST /admin/voters/{id}/deactivate", log(adminHandler.DeactivateVoter))
	mux.HandleFunc("POST /admin/parties", log(adminHandler.CreateParty))
	mux.HandleFunc("GET /admin/departments", log(adminHandler.ListDepartments))
	mux.HandleFunc("POST /admin/delegates", log(adminHandler.RegisterDelegate))
	mux.HandleFunc("POST /admin/delegates/{id}/approve", log(adminHandler.ApproveDelegate))
	mux.HandleFunc("POST /admin/candidates", log(adminHandler.RegisterCandidate))
	mux.HandleFunc("POST /admin/candidates/{id}/approve", log(adminHandler.ApproveCandidate))
	mux.HandleFunc("GET /admin/audit", log(adminHandler.ListAudit))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-elect API v1"))
	})

	return mux
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Elect API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, svc, auditor, cfg)

# Endpoints

Health:

	GET /health

Sessions:

	POST /api/auth/login  - Exchange registration number and secret for a session token
	POST /api/auth/logout - Audit the logout (tokens are stateless)

Voting (requires "Authorization: Bearer <token>"):

	GET  /api/status         - Phase, open windows and the caller's progress
	GET  /api/positions      - The fixed offices
	GET  /api/delegates      - Approved delegates in the caller's department
	GET  /api/candidates     - Approved candidates, optionally ?position=name
	POST /api/votes/delegate - Cast the delegate vote (allowed networks only)
	POST /api/votes/main     - Cast a main vote (allowed networks only)
	GET  /api/results        - Released results for the caller's faculty

Administration (requires X-Admin-Key):

	POST /admin/elections                      - Create election (root key)
	GET  /admin/elections/{id}                 - Election details
	POST /admin/elections/{id}/phase           - Advance one phase
	POST /admin/elections/{id}/archive         - Deactivate a closed election
	GET  /admin/elections/{id}/results         - Results across all departments
	POST /admin/elections/{id}/results/refresh - Recompute the results cache
	GET  /admin/elections/{id}/results/cache   - Cached candidate rows
	POST /admin/voters                         - Enroll voter
	POST /admin/voters/{id}/deactivate         - Deactivate voter
	POST /admin/parties                        - Create party
	GET  /admin/departments                    - Departments, optionally ?faculty_id=
	POST /admin/delegates                      - Register delegate (capacity checked)
	POST /admin/delegates/{id}/approve         - Approve delegate (capacity re-checked)
	POST /admin/candidates                     - Register candidate
	POST /admin/candidates/{id}/approve        - Approve candidate
	GET  /admin/audit                          - Audit trail, ?action= and ?voter_id=
*/
package router

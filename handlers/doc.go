// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Elect API.

# Handler Types

  - AuthHandler: Login with attempt throttling, logout
  - VotingHandler: Delegate and main votes, status, listings
  - ResultsHandler: Released results and the results cache
  - AdminHandler: Election lifecycle, enrollment, parties, registrations, audit

Handlers are thin: they authenticate, decode, call election.Service and
render the outcome.

# Errors

Rejections from the election core carry a code that picks the HTTP status
(see StatusFor) and is echoed in the body:

	{"error":"Conflict","message":"...","code":"AlreadyVoted"}

Store failures are logged and answered with a generic 500 whose code is
StoreUnavailable.

# Authentication

Voters send "Authorization: Bearer <session_token>" obtained from
POST /api/auth/login. Administrators send X-Admin-Key: the root key opens
everything, an election key opens that election.
*/
package handlers

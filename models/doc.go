// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - LoginRequest: registration_number, secret
  - CastDelegateVoteRequest: delegate_id
  - CastMainVoteRequest: candidate_id
  - CreateElectionRequest: name, description, voting windows
  - AdvancePhaseRequest: to
  - EnrollVoterRequest, CreatePartyRequest, RegisterDelegateRequest, RegisterCandidateRequest

# Response Types

  - LoginResponse: session_token, expires_at, voter
  - VoteResponse: vote_id, cast_at, message
  - CreateElectionResponse: election_id, admin_key
  - StatusResponse: election and voter status
  - ErrorResponse: error, message, code

# Domain Types

  - Faculty, Department, Programme: organizational reference data
  - Voter: enrolled student (department resolved through the programme)
  - Party, Position: parties and the eight fixed offices
  - Delegate: a voter bound to one (party, department) pair
  - Candidate: a voter standing for one (party, position) pair
  - Election: phase and voting windows
  - DelegateVote, MainVote: cast votes
  - AuditEntry: append-only audit record
  - ElectionResults, ElectionResult: computed tallies and their cache rows

# Phases

Elections move forward through five phases:

	registration → delegate_voting → main_voting → results → closed

Phase.Next returns the single legal successor.
*/
package models

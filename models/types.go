// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Phase is the lifecycle stage of an election.
type Phase string

// Election phase constants, in lifecycle order
const (
	PhaseRegistration   Phase = "registration"
	PhaseDelegateVoting Phase = "delegate_voting"
	PhaseMainVoting     Phase = "main_voting"
	PhaseResults        Phase = "results"
	PhaseClosed         Phase = "closed"
)

var phaseOrder = []Phase{
	PhaseRegistration,
	PhaseDelegateVoting,
	PhaseMainVoting,
	PhaseResults,
	PhaseClosed,
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p.index() >= 0
}

// Next returns the phase that follows p. The second value is false for
// closed and for unknown phases.
func (p Phase) Next() (Phase, bool) {
	i := p.index()
	if i < 0 || i == len(phaseOrder)-1 {
		return "", false
	}
	return phaseOrder[i+1], true
}

func (p Phase) index() int {
	for i, phase := range phaseOrder {
		if phase == p {
			return i
		}
	}
	return -1
}

// Position name constants (fixed offices)
const (
	PositionPresident             = "president"
	PositionVicePresident         = "vice_president"
	PositionSecretaryGeneral      = "secretary_general"
	PositionTreasurer             = "treasurer"
	PositionSportsMinister        = "sports_minister"
	PositionEntertainmentMinister = "entertainment_minister"
	PositionEducationMinister     = "education_minister"
	PositionAccommodationMinister = "accommodation_minister"
)

// Audit action kinds
const (
	ActionDelegateVote          = "delegate_vote"
	ActionMainVote              = "main_vote"
	ActionVoteAttempt           = "vote_attempt"
	ActionLoginAttempt          = "login_attempt"
	ActionLogout                = "logout"
	ActionSecurityViolation     = "security_violation"
	ActionPhaseChange           = "phase_change"
	ActionDelegateRegistration  = "delegate_registration"
	ActionCandidateRegistration = "candidate_registration"
)

// Request types

type LoginRequest struct {
	RegistrationNumber string `json:"registration_number"`
	Secret             string `json:"secret"`
}

type CastDelegateVoteRequest struct {
	DelegateID string `json:"delegate_id"`
}

type CastMainVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

type CreateElectionRequest struct {
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	DelegateVotingStart time.Time `json:"delegate_voting_start"`
	DelegateVotingEnd   time.Time `json:"delegate_voting_end"`
	MainVotingStart     time.Time `json:"main_voting_start"`
	MainVotingEnd       time.Time `json:"main_voting_end"`
}

type AdvancePhaseRequest struct {
	To Phase `json:"to"`
}

type EnrollVoterRequest struct {
	RegistrationNumber string `json:"registration_number"`
	Secret             string `json:"secret"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	ProgrammeID        string `json:"programme_id"`
}

type CreatePartyRequest struct {
	Name        string `json:"name"`
	Acronym     string `json:"acronym"`
	Description string `json:"description"`
	ColorCode   string `json:"color_code"`
}

type RegisterDelegateRequest struct {
	VoterID      string `json:"voter_id"`
	PartyID      string `json:"party_id"`
	DepartmentID string `json:"department_id"`
}

type RegisterCandidateRequest struct {
	VoterID   string `json:"voter_id"`
	PartyID   string `json:"party_id"`
	Position  string `json:"position"`
	Manifesto string `json:"manifesto"`
}

// Response types

type LoginResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Voter        Voter     `json:"voter"`
}

type VoteResponse struct {
	VoteID  string    `json:"vote_id"`
	CastAt  time.Time `json:"cast_at"`
	Message string    `json:"message"`
}

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
	AdminKey   string `json:"admin_key"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type ElectionStatus struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	CurrentPhase         Phase  `json:"current_phase"`
	DelegateVotingActive bool   `json:"delegate_voting_active"`
	MainVotingActive     bool   `json:"main_voting_active"`
	ResultsAvailable     bool   `json:"results_available"`
	ClosesIn             string `json:"closes_in,omitempty"`
}

type VoterStatus struct {
	HasVotedForDelegate bool   `json:"has_voted_for_delegate"`
	IsDelegate          bool   `json:"is_delegate"`
	MainVotesCast       int    `json:"main_votes_cast"`
	TotalPositions      int    `json:"total_positions"`
	Department          string `json:"department"`
	Faculty             string `json:"faculty"`
}

type StatusResponse struct {
	Election ElectionStatus `json:"election"`
	Voter    VoterStatus    `json:"user_status"`
}

// Domain types

type Faculty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	FacultyID   string `json:"faculty_id"`
	FacultyName string `json:"faculty_name"`
}

type Programme struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	DepartmentID string `json:"department_id"`
}

type Voter struct {
	ID                 string    `json:"id"`
	RegistrationNumber string    `json:"registration_number"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email,omitempty"`
	ProgrammeID        *string   `json:"programme_id,omitempty"`
	IsActive           bool      `json:"is_active"`
	SecretHash         string    `json:"-"` // Never expose in JSON
	LastLoginIP        *string   `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}

func (v Voter) FullName() string {
	return v.FirstName + " " + v.LastName
}

type Party struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Acronym     string    `json:"acronym"`
	Description string    `json:"description"`
	ColorCode   string    `json:"color_code"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Position struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	DisplayOrder int    `json:"display_order"`
}

type Delegate struct {
	ID           string    `json:"id"`
	VoterID      string    `json:"voter_id"`
	PartyID      string    `json:"party_id"`
	DepartmentID string    `json:"department_id"`
	IsApproved   bool      `json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
	VoterName    string    `json:"voter_name,omitempty"`
	PartyAcronym string    `json:"party_acronym,omitempty"`
}

type Candidate struct {
	ID           string    `json:"id"`
	VoterID      string    `json:"voter_id"`
	PartyID      string    `json:"party_id"`
	PositionID   string    `json:"position_id"`
	Manifesto    string    `json:"manifesto"`
	IsApproved   bool      `json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
	VoterName    string    `json:"voter_name,omitempty"`
	PartyAcronym string    `json:"party_acronym,omitempty"`
}

type Election struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	CurrentPhase        Phase     `json:"current_phase"`
	DelegateVotingStart time.Time `json:"delegate_voting_start"`
	DelegateVotingEnd   time.Time `json:"delegate_voting_end"`
	MainVotingStart     time.Time `json:"main_voting_start"`
	MainVotingEnd       time.Time `json:"main_voting_end"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
}

type DelegateVote struct {
	ID         string    `json:"id"`
	ElectionID string    `json:"election_id"`
	VoterID    string    `json:"voter_id"`
	DelegateID string    `json:"delegate_id"`
	VoterIP    string    `json:"-"`
	CastAt     time.Time `json:"cast_at"`
}

type MainVote struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	DelegateID  string    `json:"delegate_id"`
	CandidateID string    `json:"candidate_id"`
	PositionID  string    `json:"position_id"`
	VoterIP     string    `json:"-"`
	CastAt      time.Time `json:"cast_at"`
}

type AuditEntry struct {
	ID          string    `json:"id"`
	VoterID     *string   `json:"voter_id,omitempty"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	Success     bool      `json:"success"`
	Timestamp   time.Time `json:"timestamp"`
}

// Result types

type CandidateTally struct {
	CandidateID  string  `json:"candidate_id"`
	VoterName    string  `json:"voter_name"`
	PartyAcronym string  `json:"party_acronym"`
	VoteCount    int     `json:"vote_count"`
	Percentage   float64 `json:"percentage"`
	IsWinner     bool    `json:"is_winner"`
}

type PositionResult struct {
	Position   Position         `json:"position"`
	Candidates []CandidateTally `json:"candidates"`
	TotalVotes int              `json:"total_votes"`
}

type DelegateTally struct {
	DelegateID   string  `json:"delegate_id"`
	VoterName    string  `json:"voter_name"`
	PartyAcronym string  `json:"party_acronym"`
	VoteCount    int     `json:"vote_count"`
	Percentage   float64 `json:"percentage"`
	IsWinner     bool    `json:"is_winner"`
}

type DepartmentResult struct {
	Department Department      `json:"department"`
	Delegates  []DelegateTally `json:"delegates"`
	TotalVotes int             `json:"total_votes"`
}

// ElectionResults is a full tally. Recomputing over the same votes yields
// the same value apart from ComputedAt.
type ElectionResults struct {
	ElectionID  string             `json:"election_id"`
	ComputedAt  time.Time          `json:"computed_at"`
	Positions   []PositionResult   `json:"positions"`
	Departments []DepartmentResult `json:"departments"`
	InputsHash  string             `json:"inputs_hash"` // Hash of all counted vote IDs for verification
}

// ElectionResult is one cached row of the materialized result view.
type ElectionResult struct {
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	VoteCount   int       `json:"vote_count"`
	Percentage  float64   `json:"percentage"`
	IsWinner    bool      `json:"is_winner"`
	ComputedAt  time.Time `json:"computed_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

func TestRegisterDelegateDepartmentCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		v := testutil.CreateTestVoter(t, f.st, f.campus.ProgrammeX.ID, fmt.Sprintf("REG/X%d", i))
		_, err := f.svc.RegisterDelegate(ctx, models.RegisterDelegateRequest{
			VoterID: v.ID, PartyID: f.party.ID, DepartmentID: f.campus.DeptX.ID,
		}, src)

		if i <= 2 {
			if err != nil {
				t.Fatalf("Expected delegate %d to be accepted, got %v", i, err)
			}
			continue
		}
		assertCode(t, err, election.CodeCapacityExceeded)
	}

	// Another party still has room in the same department.
	other := testutil.CreateTestParty(t, f.st, "PB")
	v := testutil.CreateTestVoter(t, f.st, f.campus.ProgrammeX.ID, "REG/OTHER")
	if _, err := f.svc.RegisterDelegate(ctx, models.RegisterDelegateRequest{
		VoterID: v.ID, PartyID: other.ID, DepartmentID: f.campus.DeptX.ID,
	}, src); err != nil {
		t.Errorf("Expected other party to be accepted, got %v", err)
	}
}

func TestRegisterDelegatePartyCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Eight departments with two slots each give room for sixteen.
	var programmes []models.Programme
	var departments []models.Department
	for i := 0; i < 8; i++ {
		d, p := testutil.CreateTestDepartment(t, f.st, f.campus, fmt.Sprintf("D%d", i))
		departments = append(departments, d)
		programmes = append(programmes, p)
	}

	for i := 0; i < 16; i++ {
		slot := i / 2
		v := testutil.CreateTestVoter(t, f.st, programmes[slot].ID, fmt.Sprintf("REG/P%02d", i))
		_, err := f.svc.RegisterDelegate(ctx, models.RegisterDelegateRequest{
			VoterID: v.ID, PartyID: f.party.ID, DepartmentID: departments[slot].ID,
		}, src)

		if i < 15 {
			if err != nil {
				t.Fatalf("Expected delegate %d to be accepted, got %v", i+1, err)
			}
			continue
		}
		assertCode(t, err, election.CodeCapacityExceeded)
	}
}

func TestRegisterDelegateLocality(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := testutil.CreateTestVoter(t, f.st, f.campus.ProgrammeX.ID, "REG/A")
	_, err := f.svc.RegisterDelegate(ctx, models.RegisterDelegateRequest{
		VoterID: v.ID, PartyID: f.party.ID, DepartmentID: f.campus.DeptY.ID,
	}, src)
	assertCode(t, err, election.CodeIneligibleLocality)

	d, err := f.svc.RegisterDelegate(ctx, models.RegisterDelegateRequest{
		VoterID: v.ID, PartyID: f.party.ID, DepartmentID: f.campus.DeptX.ID,
	}, src)
	if err != nil {
		t.Fatalf("Expected matching department to be accepted, got %v", err)
	}
	if d.IsApproved {
		t.Error("Expected new delegate to be pending")
	}

	_, err = f.svc.RegisterDelegate(ctx, models.RegisterDelegateRequest{
		VoterID: v.ID, PartyID: f.party.ID, DepartmentID: f.campus.DeptX.ID,
	}, src)
	assertCode(t, err, election.CodeAlreadyRegistered)

	_, err = f.svc.RegisterDelegate(ctx, models.RegisterDelegateRequest{
		VoterID: "ghost", PartyID: f.party.ID, DepartmentID: f.campus.DeptX.ID,
	}, src)
	assertCode(t, err, election.CodeTargetNotFound)
}

func TestApproveDelegateRechecksCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var delegates []models.Delegate
	for i := 0; i < 3; i++ {
		v := testutil.CreateTestVoter(t, f.st, f.campus.ProgrammeX.ID, fmt.Sprintf("REG/X%d", i))
		delegates = append(delegates, testutil.CreateTestDelegate(t, f.st, v, f.party.ID, f.campus.DeptX.ID, false))
	}

	_, err := f.svc.ApproveDelegate(ctx, delegates[2].ID, src)
	assertCode(t, err, election.CodeCapacityExceeded)

	_, err = f.svc.ApproveDelegate(ctx, "missing", src)
	assertCode(t, err, election.CodeTargetNotFound)

	stored, err := f.st.GetDelegate(ctx, delegates[2].ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.IsApproved {
		t.Error("Expected over-capacity delegate to stay pending")
	}
}

func TestApproveDelegate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := testutil.CreateTestVoter(t, f.st, f.campus.ProgrammeX.ID, "REG/A")
	pending := testutil.CreateTestDelegate(t, f.st, v, f.party.ID, f.campus.DeptX.ID, false)

	d, err := f.svc.ApproveDelegate(ctx, pending.ID, src)
	if err != nil {
		t.Fatalf("ApproveDelegate() error = %v", err)
	}
	if !d.IsApproved {
		t.Error("Expected delegate to be approved")
	}
}

func TestConcurrentDelegateRegistration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 6
	voters := make([]models.Voter, attempts)
	for i := range voters {
		voters[i] = testutil.CreateTestVoter(t, f.st, f.campus.ProgrammeX.ID, fmt.Sprintf("REG/C%d", i))
	}

	var (
		wg           sync.WaitGroup
		successCount atomic.Int32
		fullCount    atomic.Int32
	)
	for _, v := range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RegisterDelegate(ctx, models.RegisterDelegateRequest{
				VoterID: v.ID, PartyID: f.party.ID, DepartmentID: f.campus.DeptX.ID,
			}, src)
			switch {
			case err == nil:
				successCount.Add(1)
			case election.IsCode(err, election.CodeCapacityExceeded):
				fullCount.Add(1)
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != election.MaxDelegatesPerDepartment {
		t.Errorf("Expected %d registrations, got %d", election.MaxDelegatesPerDepartment, successCount.Load())
	}
	if fullCount.Load() != attempts-election.MaxDelegatesPerDepartment {
		t.Errorf("Expected %d CapacityExceeded, got %d", attempts-election.MaxDelegatesPerDepartment, fullCount.Load())
	}
}

func TestRegisterCandidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v1 := testutil.CreateTestVoter(t, f.st, f.campus.ProgrammeX.ID, "REG/A")
	v2 := testutil.CreateTestVoter(t, f.st, f.campus.ProgrammeX.ID, "REG/B")

	c, err := f.svc.RegisterCandidate(ctx, models.RegisterCandidateRequest{
		VoterID: v1.ID, PartyID: f.party.ID, Position: models.PositionPresident, Manifesto: "Free coffee",
	}, src)
	if err != nil {
		t.Fatalf("RegisterCandidate() error = %v", err)
	}
	if c.IsApproved || c.PartyAcronym != "PA" {
		t.Errorf("Unexpected candidate: %+v", c)
	}

	_, err = f.svc.RegisterCandidate(ctx, models.RegisterCandidateRequest{
		VoterID: v2.ID, PartyID: f.party.ID, Position: models.PositionPresident,
	}, src)
	assertCode(t, err, election.CodeAlreadyRegistered)

	_, err = f.svc.RegisterCandidate(ctx, models.RegisterCandidateRequest{
		VoterID: v2.ID, PartyID: f.party.ID, Position: "emperor",
	}, src)
	assertCode(t, err, election.CodeTargetNotFound)

	approved, err := f.svc.ApproveCandidate(ctx, c.ID, src)
	if err != nil {
		t.Fatalf("ApproveCandidate() error = %v", err)
	}
	if !approved.IsApproved {
		t.Error("Expected candidate to be approved")
	}

	_, err = f.svc.ApproveCandidate(ctx, "missing", src)
	assertCode(t, err, election.CodeTargetNotFound)
}

func validElectionRequest() models.CreateElectionRequest {
	return models.CreateElectionRequest{
		Name:                "Student Council 2025",
		DelegateVotingStart: testutil.Now,
		DelegateVotingEnd:   testutil.Now.Add(24 * time.Hour),
		MainVotingStart:     testutil.Now.Add(48 * time.Hour),
		MainVotingEnd:       testutil.Now.Add(72 * time.Hour),
	}
}

func TestCreateElection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.CreateElection(ctx, validElectionRequest(), src)
	if err != nil {
		t.Fatalf("CreateElection() error = %v", err)
	}
	if e.CurrentPhase != models.PhaseRegistration || !e.IsActive {
		t.Errorf("Unexpected election: %+v", e)
	}

	_, err = f.svc.CreateElection(ctx, validElectionRequest(), src)
	assertCode(t, err, election.CodeActiveElectionExists)

	active, err := f.svc.ActiveElection(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if active.ID != e.ID {
		t.Errorf("Expected active election %s, got %s", e.ID, active.ID)
	}
}

func TestCreateElectionValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*models.CreateElectionRequest)
	}{
		{"missing name", func(r *models.CreateElectionRequest) { r.Name = "  " }},
		{"delegate window reversed", func(r *models.CreateElectionRequest) { r.DelegateVotingEnd = r.DelegateVotingStart }},
		{"main window reversed", func(r *models.CreateElectionRequest) { r.MainVotingEnd = r.MainVotingStart.Add(-time.Hour) }},
		{"main before delegate ends", func(r *models.CreateElectionRequest) { r.MainVotingStart = r.DelegateVotingStart }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validElectionRequest()
			tt.mutate(&req)
			_, err := f.svc.CreateElection(context.Background(), req, src)
			assertCode(t, err, election.CodeInvalidRequest)
		})
	}
}

func TestAdvancePhase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.CreateElection(ctx, validElectionRequest(), src)
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.AdvancePhase(ctx, e.ID, models.PhaseMainVoting, src)
	assertCode(t, err, election.CodeInvalidTransition)

	for _, to := range []models.Phase{models.PhaseDelegateVoting, models.PhaseMainVoting, models.PhaseResults, models.PhaseClosed} {
		got, err := f.svc.AdvancePhase(ctx, e.ID, to, src)
		if err != nil {
			t.Fatalf("AdvancePhase(%s) error = %v", to, err)
		}
		if got.CurrentPhase != to {
			t.Errorf("Expected phase %s, got %s", to, got.CurrentPhase)
		}
	}

	_, err = f.svc.AdvancePhase(ctx, e.ID, models.PhaseRegistration, src)
	assertCode(t, err, election.CodeInvalidTransition)

	_, err = f.svc.AdvancePhase(ctx, "missing", models.PhaseDelegateVoting, src)
	assertCode(t, err, election.CodeTargetNotFound)

	entries, err := f.st.ListAuditEntries(ctx, models.ActionPhaseChange, "")
	if err != nil {
		t.Fatal(err)
	}
	var ok, failed int
	for _, entry := range entries {
		if entry.Success {
			ok++
		} else {
			failed++
		}
	}
	// One creation plus four advances succeed; two invalid moves fail.
	if ok != 5 || failed != 2 {
		t.Errorf("Expected 5 successful and 2 failed phase entries, got %d and %d", ok, failed)
	}
}

func TestArchiveElection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e := testutil.CreateTestElection(t, f.st, models.PhaseResults)

	err := f.svc.ArchiveElection(ctx, e.ID)
	assertCode(t, err, election.CodeInvalidTransition)

	testutil.SetPhase(t, f.st, &e, models.PhaseClosed)
	if err := f.svc.ArchiveElection(ctx, e.ID); err != nil {
		t.Fatalf("ArchiveElection() error = %v", err)
	}

	if _, err := f.svc.CreateElection(ctx, validElectionRequest(), src); err != nil {
		t.Errorf("Expected new election after archiving, got %v", err)
	}
}

func TestEnrollVoterAndParty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.svc.EnrollVoter(ctx, models.EnrollVoterRequest{
		RegistrationNumber: "REG/NEW", Secret: "BC-1", FirstName: "Ada", LastName: "Lovelace",
		ProgrammeID: f.campus.ProgrammeX.ID,
	})
	if err != nil {
		t.Fatalf("EnrollVoter() error = %v", err)
	}
	if v.SecretHash == "BC-1" || !v.IsActive {
		t.Errorf("Unexpected voter: %+v", v)
	}

	dept, err := f.st.ResolveDepartment(ctx, v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if dept.ID != f.campus.DeptX.ID {
		t.Errorf("Expected department %s, got %s", f.campus.DeptX.ID, dept.ID)
	}

	_, err = f.svc.EnrollVoter(ctx, models.EnrollVoterRequest{
		RegistrationNumber: "REG/NEW", Secret: "x", FirstName: "A", LastName: "B",
	})
	assertCode(t, err, election.CodeAlreadyRegistered)

	_, err = f.svc.EnrollVoter(ctx, models.EnrollVoterRequest{RegistrationNumber: "REG/EMPTY"})
	assertCode(t, err, election.CodeInvalidRequest)

	p, err := f.svc.CreateParty(ctx, models.CreatePartyRequest{Name: "Green Wave", Acronym: "gw"})
	if err != nil {
		t.Fatalf("CreateParty() error = %v", err)
	}
	if p.Acronym != "GW" || p.ColorCode != "#000000" {
		t.Errorf("Unexpected party: %+v", p)
	}

	_, err = f.svc.CreateParty(ctx, models.CreatePartyRequest{Name: "Green Wave", Acronym: "GW2"})
	assertCode(t, err, election.CodeAlreadyRegistered)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

func TestResultsHandlers(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminHandler(env.svc, env.st, env.cfg)
	h := NewResultsHandler(env.svc, env.st, admin)
	voting := NewVotingHandler(env.svc, env.st)

	e := testutil.CreateTestElection(t, env.st, models.PhaseDelegateVoting)
	voter := testutil.CreateTestVoter(t, env.st, env.campus.ProgrammeX.ID, "REG/A")
	dgVoter := testutil.CreateTestVoter(t, env.st, env.campus.ProgrammeX.ID, "REG/D")
	d := testutil.CreateTestDelegate(t, env.st, dgVoter, env.party.ID, env.campus.DeptX.ID, true)
	c := testutil.CreateTestCandidate(t, env.st,
		testutil.CreateTestVoter(t, env.st, env.campus.ProgrammeY.ID, "REG/C"), env.party.ID, models.PositionPresident, true)

	getResults := func() *http.Request {
		return testutil.MakeRequest("GET", "/api/results", nil, testutil.SessionHeaders(voter.ID, env.cfg))
	}

	w := serve(env.asVoter(h.GetResults), getResults())
	testutil.AssertStatus(t, w, http.StatusConflict)
	if resp := decodeError(t, w); resp.Code != string(election.CodePhaseClosed) {
		t.Errorf("Expected PhaseClosed while voting, got %s", resp.Code)
	}

	testutil.AssertStatus(t, castDelegate(env, voting, voter.ID, models.CastDelegateVoteRequest{DelegateID: d.ID}), http.StatusCreated)
	testutil.SetPhase(t, env.st, &e, models.PhaseMainVoting)
	testutil.AssertStatus(t, castMain(env, voting, dgVoter.ID, models.CastMainVoteRequest{CandidateID: c.ID}), http.StatusCreated)
	testutil.SetPhase(t, env.st, &e, models.PhaseResults)

	w = serve(env.asVoter(h.GetResults), getResults())
	testutil.AssertStatus(t, w, http.StatusOK)
	var results models.ElectionResults
	testutil.AssertJSON(t, w, &results)
	if results.ElectionID != e.ID || len(results.Departments) != 2 {
		t.Fatalf("Unexpected results: %+v", results)
	}
	if results.Positions[0].Candidates[0].CandidateID != c.ID || !results.Positions[0].Candidates[0].IsWinner {
		t.Errorf("Expected the candidate to win president, got %+v", results.Positions[0])
	}

	key := map[string]string{"X-Admin-Key": auth.GenerateAdminKey(e.ID, env.cfg.AdminKeySalt)}

	refresh := testutil.MakeRequest("POST", "/admin/elections/"+e.ID+"/results/refresh", nil, key)
	refresh.SetPathValue("id", e.ID)
	testutil.AssertStatus(t, serve(h.RefreshResults, refresh), http.StatusOK)

	cache := testutil.MakeRequest("GET", "/admin/elections/"+e.ID+"/results/cache", nil, key)
	cache.SetPathValue("id", e.ID)
	w = serve(h.GetCachedResults, cache)
	testutil.AssertStatus(t, w, http.StatusOK)
	var rows []models.ElectionResult
	testutil.AssertJSON(t, w, &rows)
	if len(rows) != 1 || rows[0].CandidateID != c.ID || rows[0].VoteCount != 1 {
		t.Errorf("Unexpected cached rows: %+v", rows)
	}

	all := testutil.MakeRequest("GET", "/admin/elections/"+e.ID+"/results", nil, nil)
	all.SetPathValue("id", e.ID)
	testutil.AssertStatus(t, serve(h.GetElectionResults, all), http.StatusUnauthorized)

	all = testutil.MakeRequest("GET", "/admin/elections/"+e.ID+"/results", nil, key)
	all.SetPathValue("id", e.ID)
	testutil.AssertStatus(t, serve(h.GetElectionResults, all), http.StatusOK)
}

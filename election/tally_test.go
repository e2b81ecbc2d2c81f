// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"math"
	"reflect"
	"testing"

	"github.com/danielhkuo/quickly-elect/models"
)

var (
	president = models.Position{ID: "pos-president", Name: models.PositionPresident, DisplayOrder: 1}
	treasurer = models.Position{ID: "pos-treasurer", Name: models.PositionTreasurer, DisplayOrder: 4}
)

func mainVotes(candidateID string, n int, prefix string) []models.MainVote {
	votes := make([]models.MainVote, n)
	for i := range votes {
		votes[i] = models.MainVote{ID: prefix + string(rune('a'+i)), CandidateID: candidateID}
	}
	return votes
}

func TestTallyPositions(t *testing.T) {
	candidates := []models.Candidate{
		{ID: "c1", PositionID: president.ID, IsApproved: true},
		{ID: "c2", PositionID: president.ID, IsApproved: true},
		{ID: "c3", PositionID: president.ID, IsApproved: true},
		{ID: "c4", PositionID: treasurer.ID, IsApproved: true},
	}

	var votes []models.MainVote
	votes = append(votes, mainVotes("c1", 1, "v1-")...)
	votes = append(votes, mainVotes("c2", 2, "v2-")...)
	votes = append(votes, mainVotes("c3", 0, "v3-")...)
	votes = append(votes, mainVotes("unknown", 4, "vx-")...)

	results, counted := TallyPositions([]models.Position{president, treasurer}, candidates, votes)

	if len(results) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(results))
	}
	if len(counted) != 3 {
		t.Errorf("Expected 3 counted votes, got %d", len(counted))
	}

	pres := results[0]
	if pres.Position.ID != president.ID {
		t.Errorf("Expected president first, got %s", pres.Position.ID)
	}
	if pres.TotalVotes != 3 {
		t.Errorf("Expected 3 votes for president, got %d", pres.TotalVotes)
	}

	var order []string
	for _, c := range pres.Candidates {
		order = append(order, c.CandidateID)
	}
	if want := []string{"c2", "c1", "c3"}; !reflect.DeepEqual(order, want) {
		t.Errorf("Expected order %v, got %v", want, order)
	}

	if !pres.Candidates[0].IsWinner || pres.Candidates[1].IsWinner || pres.Candidates[2].IsWinner {
		t.Errorf("Expected only c2 to win: %+v", pres.Candidates)
	}

	sum := 0.0
	for _, c := range pres.Candidates {
		sum += c.Percentage
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("Expected percentages to sum to 100, got %f", sum)
	}

	tres := results[1]
	if tres.TotalVotes != 0 {
		t.Errorf("Expected 0 votes for treasurer, got %d", tres.TotalVotes)
	}
	for _, c := range tres.Candidates {
		if c.Percentage != 0 {
			t.Errorf("Expected 0%% with no votes, got %f", c.Percentage)
		}
		if c.IsWinner {
			t.Error("Expected no winner for a position without votes")
		}
	}
}

func TestTallyPositionsTies(t *testing.T) {
	candidates := []models.Candidate{
		{ID: "c2", PositionID: president.ID},
		{ID: "c1", PositionID: president.ID},
		{ID: "c3", PositionID: president.ID},
	}
	var votes []models.MainVote
	votes = append(votes, mainVotes("c1", 2, "a-")...)
	votes = append(votes, mainVotes("c2", 2, "b-")...)
	votes = append(votes, mainVotes("c3", 1, "c-")...)

	results, _ := TallyPositions([]models.Position{president}, candidates, votes)
	rows := results[0].Candidates

	if rows[0].CandidateID != "c1" || rows[1].CandidateID != "c2" {
		t.Errorf("Expected tied candidates ordered by ID, got %s, %s", rows[0].CandidateID, rows[1].CandidateID)
	}
	if !rows[0].IsWinner || !rows[1].IsWinner {
		t.Error("Expected both tied candidates to win")
	}
	if rows[2].IsWinner {
		t.Error("Expected third candidate not to win")
	}
	if rows[0].Percentage != 40 || rows[2].Percentage != 20 {
		t.Errorf("Unexpected percentages: %+v", rows)
	}
}

func TestTallyPositionsIdempotent(t *testing.T) {
	candidates := []models.Candidate{
		{ID: "c1", PositionID: president.ID},
		{ID: "c2", PositionID: president.ID},
		{ID: "c4", PositionID: treasurer.ID},
	}
	votes := append(mainVotes("c1", 3, "a-"), mainVotes("c4", 2, "b-")...)
	votes = append(votes, mainVotes("c2", 1, "c-")...)

	first, firstIDs := TallyPositions([]models.Position{president, treasurer}, candidates, votes)

	// Same rows in a different order.
	reversed := make([]models.MainVote, len(votes))
	for i, v := range votes {
		reversed[len(votes)-1-i] = v
	}
	second, secondIDs := TallyPositions([]models.Position{president, treasurer}, candidates, reversed)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Tally not order independent:\n%+v\n%+v", first, second)
	}
	if InputsHash(firstIDs) != InputsHash(secondIDs) {
		t.Error("Inputs hash depends on vote order")
	}
}

func TestTallyDepartments(t *testing.T) {
	deptX := models.Department{ID: "x", Name: "X"}
	deptY := models.Department{ID: "y", Name: "Y"}
	delegates := []models.Delegate{
		{ID: "d1", DepartmentID: "x"},
		{ID: "d2", DepartmentID: "x"},
		{ID: "d3", DepartmentID: "y"},
		{ID: "d4", DepartmentID: "z"},
	}
	votes := []models.DelegateVote{
		{ID: "v1", DelegateID: "d1"},
		{ID: "v2", DelegateID: "d1"},
		{ID: "v3", DelegateID: "d2"},
		{ID: "v4", DelegateID: "d4"},
	}

	results, counted := TallyDepartments([]models.Department{deptX, deptY}, delegates, votes)

	if len(results) != 2 {
		t.Fatalf("Expected 2 departments, got %d", len(results))
	}
	if len(counted) != 3 {
		t.Errorf("Expected votes outside the departments to be ignored, counted %d", len(counted))
	}

	x := results[0]
	if x.TotalVotes != 3 || x.Delegates[0].DelegateID != "d1" || !x.Delegates[0].IsWinner {
		t.Errorf("Unexpected department X result: %+v", x)
	}
	if math.Abs(x.Delegates[0].Percentage-200.0/3) > 1e-9 {
		t.Errorf("Expected 66.67%%, got %f", x.Delegates[0].Percentage)
	}

	y := results[1]
	if y.TotalVotes != 0 || y.Delegates[0].IsWinner || y.Delegates[0].Percentage != 0 {
		t.Errorf("Unexpected department Y result: %+v", y)
	}
}

func TestInputsHash(t *testing.T) {
	a := InputsHash([]string{"v1", "v2", "v3"})
	b := InputsHash([]string{"v3", "v1", "v2"})
	if a != b {
		t.Error("Expected hash to ignore order")
	}
	if a == InputsHash([]string{"v1", "v2"}) {
		t.Error("Expected different sets to hash differently")
	}
	if InputsHash([]string{"ab", "c"}) == InputsHash([]string{"a", "bc"}) {
		t.Error("Expected ID boundaries to affect the hash")
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(a))
	}
}

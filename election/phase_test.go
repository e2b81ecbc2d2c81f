// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"testing"
	"time"

	"github.com/danielhkuo/quickly-elect/models"
)

func TestVotingWindows(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(10 * time.Hour)
	e := models.Election{
		DelegateVotingStart: t0,
		DelegateVotingEnd:   t1,
		MainVotingStart:     t0,
		MainVotingEnd:       t1,
	}

	tests := []struct {
		name         string
		phase        models.Phase
		now          time.Time
		wantDelegate bool
		wantMain     bool
	}{
		{"delegate phase inside window", models.PhaseDelegateVoting, t0.Add(time.Hour), true, false},
		{"delegate phase at start", models.PhaseDelegateVoting, t0, true, false},
		{"delegate phase at end", models.PhaseDelegateVoting, t1, true, false},
		{"delegate phase before window", models.PhaseDelegateVoting, t0.Add(-time.Second), false, false},
		{"delegate phase after window", models.PhaseDelegateVoting, t1.Add(time.Second), false, false},
		{"main phase inside window", models.PhaseMainVoting, t0.Add(time.Hour), false, true},
		{"main phase after window", models.PhaseMainVoting, t1.Add(time.Nanosecond), false, false},
		{"registration inside windows", models.PhaseRegistration, t0.Add(time.Hour), false, false},
		{"results inside windows", models.PhaseResults, t0.Add(time.Hour), false, false},
		{"closed inside windows", models.PhaseClosed, t0.Add(time.Hour), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.CurrentPhase = tt.phase
			if got := IsDelegateVotingOpen(e, tt.now); got != tt.wantDelegate {
				t.Errorf("IsDelegateVotingOpen() = %v, want %v", got, tt.wantDelegate)
			}
			if got := IsMainVotingOpen(e, tt.now); got != tt.wantMain {
				t.Errorf("IsMainVotingOpen() = %v, want %v", got, tt.wantMain)
			}
		})
	}
}

func TestIsResultsReleasable(t *testing.T) {
	tests := []struct {
		phase models.Phase
		want  bool
	}{
		{models.PhaseRegistration, false},
		{models.PhaseDelegateVoting, false},
		{models.PhaseMainVoting, false},
		{models.PhaseResults, true},
		{models.PhaseClosed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			if got := IsResultsReleasable(models.Election{CurrentPhase: tt.phase}); got != tt.want {
				t.Errorf("IsResultsReleasable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name     string
		from, to models.Phase
		wantCode Code
	}{
		{"registration to delegate voting", models.PhaseRegistration, models.PhaseDelegateVoting, ""},
		{"delegate to main voting", models.PhaseDelegateVoting, models.PhaseMainVoting, ""},
		{"main voting to results", models.PhaseMainVoting, models.PhaseResults, ""},
		{"results to closed", models.PhaseResults, models.PhaseClosed, ""},
		{"skip a phase", models.PhaseRegistration, models.PhaseMainVoting, CodeInvalidTransition},
		{"backwards", models.PhaseMainVoting, models.PhaseDelegateVoting, CodeInvalidTransition},
		{"same phase", models.PhaseResults, models.PhaseResults, CodeInvalidTransition},
		{"past closed", models.PhaseClosed, models.PhaseRegistration, CodeInvalidTransition},
		{"unknown target", models.PhaseRegistration, models.Phase("voting"), CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Expected transition to be allowed, got %v", err)
				}
				return
			}
			if !IsCode(err, tt.wantCode) {
				t.Errorf("Expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package throttle

import (
	"sync"
	"testing"
	"time"
)

func newTestThrottle(max int, window time.Duration) (*Throttle, *time.Time) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	th := New(max, window)
	th.now = func() time.Time { return now }
	return th, &now
}

func TestLockoutAfterMaxFailures(t *testing.T) {
	th, _ := newTestThrottle(3, 15*time.Minute)

	for i := 1; i <= 2; i++ {
		if got := th.RecordFailure("10.0.0.1"); got != i {
			t.Errorf("Expected count %d, got %d", i, got)
		}
		if th.TooManyAttempts("10.0.0.1") {
			t.Fatalf("Locked out after %d failures", i)
		}
	}

	th.RecordFailure("10.0.0.1")
	if !th.TooManyAttempts("10.0.0.1") {
		t.Error("Expected lockout after 3 failures")
	}
	if th.TooManyAttempts("10.0.0.2") {
		t.Error("Other keys should not be locked out")
	}
}

func TestLockoutExpires(t *testing.T) {
	th, now := newTestThrottle(2, 15*time.Minute)

	th.RecordFailure("k")
	th.RecordFailure("k")
	if !th.TooManyAttempts("k") {
		t.Fatal("Expected lockout")
	}

	*now = now.Add(14 * time.Minute)
	if !th.TooManyAttempts("k") {
		t.Error("Expected lockout to hold inside the window")
	}

	*now = now.Add(2 * time.Minute)
	if th.TooManyAttempts("k") {
		t.Error("Expected lockout to expire after the window")
	}
	if got := th.RecordFailure("k"); got != 1 {
		t.Errorf("Expected count to restart at 1, got %d", got)
	}
}

func TestClear(t *testing.T) {
	th, _ := newTestThrottle(1, time.Minute)

	th.RecordFailure("k")
	if !th.TooManyAttempts("k") {
		t.Fatal("Expected lockout")
	}

	th.Clear("k")
	if th.TooManyAttempts("k") {
		t.Error("Expected Clear to lift the lockout")
	}
}

func TestConcurrentFailures(t *testing.T) {
	th := New(1000, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			th.RecordFailure("k")
		}()
	}
	wg.Wait()

	if got := th.RecordFailure("k"); got != 51 {
		t.Errorf("Expected 51 failures, got %d", got)
	}
}

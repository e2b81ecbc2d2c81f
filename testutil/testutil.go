// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

// Now is the reference time used by test elections and FixedClock.
var Now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// TestSecret is the secret every test voter logs in with.
const TestSecret = "BC-123456"

// SetupTestDB creates a fresh SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.SQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore wraps SetupTestDB in a store.
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t), db.SQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      "test.db",
		DatabaseType:     "sqlite",
		AdminKeySalt:     "test-admin-salt",
		SessionSalt:      "test-session-salt",
		MaxLoginAttempts: 3,
		LoginLockout:     15 * time.Minute,
		SessionTTL:       time.Hour,
	}
}

// FixedClock is a settable clock for deterministic tests.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

var (
	secretOnce sync.Once
	secretHash string
)

func testSecretHash(t *testing.T) string {
	t.Helper()
	secretOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(TestSecret), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("Failed to hash test secret: %v", err)
		}
		secretHash = string(h)
	})
	return secretHash
}

// Campus is a faculty with two departments, one programme each.
type Campus struct {
	Faculty    models.Faculty
	DeptX      models.Department
	DeptY      models.Department
	ProgrammeX models.Programme
	ProgrammeY models.Programme
}

// CreateTestCampus seeds the organizational reference data most tests need.
func CreateTestCampus(t *testing.T, st *store.Store) Campus {
	t.Helper()
	ctx := context.Background()

	c := Campus{
		Faculty: models.Faculty{ID: "fac-sci", Name: "Science", Code: "SCI"},
	}
	c.DeptX = models.Department{ID: "dept-x", Name: "Computer Science", Code: "CSC", FacultyID: c.Faculty.ID, FacultyName: c.Faculty.Name}
	c.DeptY = models.Department{ID: "dept-y", Name: "Mathematics", Code: "MAT", FacultyID: c.Faculty.ID, FacultyName: c.Faculty.Name}
	c.ProgrammeX = models.Programme{ID: "prog-x", Name: "BSc Computer Science", Code: "BCS", DepartmentID: c.DeptX.ID}
	c.ProgrammeY = models.Programme{ID: "prog-y", Name: "BSc Mathematics", Code: "BMA", DepartmentID: c.DeptY.ID}

	if err := st.InsertFaculty(ctx, c.Faculty); err != nil {
		t.Fatalf("Failed to create test faculty: %v", err)
	}
	for _, d := range []models.Department{c.DeptX, c.DeptY} {
		if err := st.InsertDepartment(ctx, d); err != nil {
			t.Fatalf("Failed to create test department: %v", err)
		}
	}
	for _, p := range []models.Programme{c.ProgrammeX, c.ProgrammeY} {
		if err := st.InsertProgramme(ctx, p); err != nil {
			t.Fatalf("Failed to create test programme: %v", err)
		}
	}

	return c
}

// CreateTestDepartment adds another department with one programme to the
// campus faculty and returns both.
func CreateTestDepartment(t *testing.T, st *store.Store, c Campus, code string) (models.Department, models.Programme) {
	t.Helper()
	ctx := context.Background()

	d := models.Department{ID: "dept-" + code, Name: "Department " + code, Code: code, FacultyID: c.Faculty.ID, FacultyName: c.Faculty.Name}
	p := models.Programme{ID: "prog-" + code, Name: "Programme " + code, Code: "P" + code, DepartmentID: d.ID}

	if err := st.InsertDepartment(ctx, d); err != nil {
		t.Fatalf("Failed to create test department: %v", err)
	}
	if err := st.InsertProgramme(ctx, p); err != nil {
		t.Fatalf("Failed to create test programme: %v", err)
	}
	return d, p
}

// CreateTestVoter enrolls an active voter in the programme. Its secret is TestSecret.
func CreateTestVoter(t *testing.T, st *store.Store, programmeID, registrationNumber string) models.Voter {
	t.Helper()

	v := models.Voter{
		ID:                 uuid.NewString(),
		RegistrationNumber: registrationNumber,
		FirstName:          "Voter",
		LastName:           registrationNumber,
		IsActive:           true,
		SecretHash:         testSecretHash(t),
		CreatedAt:          Now,
	}
	if programmeID != "" {
		v.ProgrammeID = &programmeID
	}

	if err := st.InsertVoter(context.Background(), v); err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
	return v
}

// CreateTestParty creates an active party.
func CreateTestParty(t *testing.T, st *store.Store, acronym string) models.Party {
	t.Helper()

	p := models.Party{
		ID:        uuid.NewString(),
		Name:      "Party " + acronym,
		Acronym:   acronym,
		ColorCode: "#112233",
		IsActive:  true,
		CreatedAt: Now,
	}
	if err := st.InsertParty(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test party: %v", err)
	}
	return p
}

// CreateTestDelegate inserts a delegate directly, bypassing the capacity guard.
func CreateTestDelegate(t *testing.T, st *store.Store, voter models.Voter, partyID, departmentID string, approved bool) models.Delegate {
	t.Helper()

	d := models.Delegate{
		ID:           uuid.NewString(),
		VoterID:      voter.ID,
		PartyID:      partyID,
		DepartmentID: departmentID,
		IsApproved:   approved,
		CreatedAt:    Now,
	}
	if err := st.InsertDelegate(context.Background(), d); err != nil {
		t.Fatalf("Failed to create test delegate: %v", err)
	}
	return d
}

// CreateTestCandidate inserts a candidate for the named position.
func CreateTestCandidate(t *testing.T, st *store.Store, voter models.Voter, partyID, position string, approved bool) models.Candidate {
	t.Helper()
	ctx := context.Background()

	pos, err := st.GetPositionByName(ctx, position)
	if err != nil {
		t.Fatalf("Failed to find position %s: %v", position, err)
	}

	c := models.Candidate{
		ID:         uuid.NewString(),
		VoterID:    voter.ID,
		PartyID:    partyID,
		PositionID: pos.ID,
		Manifesto:  "Manifesto",
		IsApproved: approved,
		CreatedAt:  Now,
	}
	if err := st.InsertCandidate(ctx, c); err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return c
}

// CreateTestElection creates the active election in the given phase. Both
// voting windows span Now ± 1h.
func CreateTestElection(t *testing.T, st *store.Store, phase models.Phase) models.Election {
	t.Helper()

	e := models.Election{
		ID:                  uuid.NewString(),
		Name:                "Test Election",
		CurrentPhase:        phase,
		DelegateVotingStart: Now.Add(-time.Hour),
		DelegateVotingEnd:   Now.Add(time.Hour),
		MainVotingStart:     Now.Add(-time.Hour),
		MainVotingEnd:       Now.Add(time.Hour),
		IsActive:            true,
		CreatedAt:           Now.Add(-24 * time.Hour),
	}
	if err := st.InsertElection(context.Background(), e); err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return e
}

// SetPhase forces an election into a phase without audit or validation.
func SetPhase(t *testing.T, st *store.Store, e *models.Election, phase models.Phase) {
	t.Helper()
	if err := st.UpdatePhase(context.Background(), e.ID, e.CurrentPhase, phase); err != nil {
		t.Fatalf("Failed to set phase: %v", err)
	}
	e.CurrentPhase = phase
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// SessionHeaders returns request headers carrying a session token for the
// voter, valid for an hour past Now.
func SessionHeaders(voterID string, cfg cliparse.Config) map[string]string {
	token := auth.IssueSessionToken(voterID, Now.Add(time.Hour), cfg.SessionSalt)
	return map[string]string{"Authorization": "Bearer " + token}
}

// AdminHeaders returns request headers carrying the root admin key.
func AdminHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{"X-Admin-Key": auth.RootAdminKey(cfg.AdminKeySalt)}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

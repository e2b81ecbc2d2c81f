// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

func TestGenerateAdminKey(t *testing.T) {
	tests := []struct {
		name       string
		electionID string
		salt       string
	}{
		{"standard", "election123", "secret-salt"},
		{"empty election id", "", "salt"},
		{"empty salt", "election456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key1 := GenerateAdminKey(tt.electionID, tt.salt)
			key2 := GenerateAdminKey(tt.electionID, tt.salt)

			if key1 != key2 {
				t.Errorf("GenerateAdminKey() not deterministic: %s != %s", key1, key2)
			}
			if strings.Contains(key1, "=") {
				t.Error("GenerateAdminKey() contains padding")
			}
		})
	}

	if GenerateAdminKey("e1", "salt") == GenerateAdminKey("e2", "salt") {
		t.Error("Different elections should have different keys")
	}
}

func TestValidateAdminKey(t *testing.T) {
	salt := "test-salt"
	electionKey := GenerateAdminKey("election1", salt)
	rootKey := RootAdminKey(salt)

	tests := []struct {
		name       string
		electionID string
		key        string
		wantErr    bool
	}{
		{"election key", "election1", electionKey, false},
		{"root key for election", "election1", rootKey, false},
		{"root key without election", "", rootKey, false},
		{"election key for other election", "election2", electionKey, true},
		{"election key without election", "", GenerateAdminKey("", salt), true},
		{"garbage", "election1", "not-a-key", true},
		{"empty", "election1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.electionID, tt.key, salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdminKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAdminKey) {
				t.Errorf("Expected ErrInvalidAdminKey, got %v", err)
			}
		})
	}
}

func TestSessionToken(t *testing.T) {
	salt := "session-salt"
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	token := IssueSessionToken("voter-1", now.Add(time.Hour), salt)

	voterID, err := ParseSessionToken(token, salt, now)
	if err != nil {
		t.Fatalf("ParseSessionToken() error = %v", err)
	}
	if voterID != "voter-1" {
		t.Errorf("Expected voter-1, got %s", voterID)
	}

	if _, err := ParseSessionToken(token, salt, now.Add(2*time.Hour)); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
	if _, err := ParseSessionToken(token, "other-salt", now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for wrong salt, got %v", err)
	}

	tampered := strings.Replace(token, "voter-1", "voter-2", 1)
	if _, err := ParseSessionToken(tampered, salt, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for tampered token, got %v", err)
	}

	for _, bad := range []string{"", "abc", "a.b", "a.b.c.d", ".1.sig"} {
		if _, err := ParseSessionToken(bad, salt, now); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken for %q, got %v", bad, err)
		}
	}
}

type fakeVoters map[string]models.Voter

func (f fakeVoters) GetVoterByRegistration(_ context.Context, reg string) (models.Voter, error) {
	v, ok := f[reg]
	if !ok {
		return models.Voter{}, store.ErrNotFound
	}
	return v, nil
}

func TestAuthenticatorVerify(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("BC-1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	voters := fakeVoters{
		"REG/001": {ID: "v1", RegistrationNumber: "REG/001", SecretHash: string(hash), IsActive: true},
		"REG/002": {ID: "v2", RegistrationNumber: "REG/002", SecretHash: string(hash), IsActive: false},
	}
	a := NewAuthenticator(voters)
	ctx := context.Background()

	tests := []struct {
		name    string
		reg     string
		secret  string
		wantErr error
	}{
		{"valid", "REG/001", "BC-1234", nil},
		{"wrong secret", "REG/001", "BC-9999", ErrAuthFailed},
		{"unknown voter", "REG/404", "BC-1234", ErrAuthFailed},
		{"inactive voter", "REG/002", "BC-1234", ErrInactive},
		{"inactive voter wrong secret", "REG/002", "nope", ErrAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voter, err := a.Verify(ctx, tt.reg, tt.secret)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && voter.ID != "v1" {
				t.Errorf("Expected voter v1, got %q", voter.ID)
			}
		})
	}
}

func TestHashSecret(t *testing.T) {
	hash, err := HashSecret("BC-1234")
	if err != nil {
		t.Fatalf("HashSecret() error = %v", err)
	}
	if hash == "BC-1234" {
		t.Error("HashSecret() returned the plain secret")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("BC-1234")); err != nil {
		t.Errorf("Hash does not verify: %v", err)
	}
}

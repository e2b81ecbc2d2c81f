// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

var (
	ErrAuthFailed = errors.New("invalid registration number or secret")
	ErrInactive   = errors.New("voter account is inactive")
)

// VoterLookup finds voters by registration number.
type VoterLookup interface {
	GetVoterByRegistration(ctx context.Context, registrationNumber string) (models.Voter, error)
}

// Authenticator verifies voter credentials against stored bcrypt hashes.
type Authenticator struct {
	voters VoterLookup
	dummy  []byte
}

func NewAuthenticator(voters VoterLookup) *Authenticator {
	// Unknown voters still pay for one bcrypt comparison.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("quickly-elect"), bcrypt.DefaultCost)
	return &Authenticator{voters: voters, dummy: dummy}
}

// Verify returns the voter whose registration number and secret match.
// Wrong credentials yield ErrAuthFailed; a deactivated voter yields ErrInactive.
func (a *Authenticator) Verify(ctx context.Context, registrationNumber, secret string) (models.Voter, error) {
	voter, err := a.voters.GetVoterByRegistration(ctx, registrationNumber)
	if errors.Is(err, store.ErrNotFound) {
		bcrypt.CompareHashAndPassword(a.dummy, []byte(secret))
		return models.Voter{}, ErrAuthFailed
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("lookup voter: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(voter.SecretHash), []byte(secret)); err != nil {
		return models.Voter{}, ErrAuthFailed
	}
	if !voter.IsActive {
		return voter, ErrInactive
	}

	return voter, nil
}

// HashSecret hashes a voter secret for storage.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

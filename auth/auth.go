// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidToken    = errors.New("invalid token format")
	ErrTokenExpired    = errors.New("session expired")
)

// rootScope is the HMAC input for the service-wide admin key.
const rootScope = "quickly-elect:root"

// GenerateAdminKey creates an HMAC-based admin key for an election
// This is deterministic and verifiable
func GenerateAdminKey(electionID, salt string) string {
	return sign(electionID, salt)
}

// RootAdminKey is the admin key that is valid for every election and for
// creating new ones.
func RootAdminKey(salt string) string {
	return sign(rootScope, salt)
}

// ValidateAdminKey accepts the election's own key or the root key.
func ValidateAdminKey(electionID, adminKey, salt string) error {
	if hmac.Equal([]byte(adminKey), []byte(RootAdminKey(salt))) {
		return nil
	}
	if electionID != "" && hmac.Equal([]byte(adminKey), []byte(GenerateAdminKey(electionID, salt))) {
		return nil
	}
	return ErrInvalidAdminKey
}

// IssueSessionToken creates a signed voter session token of the form
// voterID.expiryUnix.signature.
func IssueSessionToken(voterID string, expiresAt time.Time, salt string) string {
	payload := voterID + "." + strconv.FormatInt(expiresAt.Unix(), 10)
	return payload + "." + sign(payload, salt)
}

// ParseSessionToken verifies the signature and expiry and returns the voter ID.
func ParseSessionToken(token, salt string, now time.Time) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" {
		return "", ErrInvalidToken
	}

	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(sign(payload, salt))) {
		return "", ErrInvalidToken
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: bad expiry", ErrInvalidToken)
	}
	if now.After(time.Unix(expiry, 0)) {
		return "", ErrTokenExpired
	}

	return parts[0], nil
}

func sign(value, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(value))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

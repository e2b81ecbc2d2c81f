// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin keys, voter session tokens, and credential
verification.

# Admin Keys

Admin keys are HMAC-SHA256 signatures, so they can be verified without
storing them:

	key := auth.GenerateAdminKey(electionID, salt)
	err := auth.ValidateAdminKey(electionID, key, salt) // nil if valid

RootAdminKey is valid for every election and is required to create one.

# Session Tokens

After a successful login the voter receives a signed token:

	token := auth.IssueSessionToken(voterID, expiresAt, sessionSalt)
	voterID, err := auth.ParseSessionToken(token, sessionSalt, time.Now())

Tokens carry their own expiry; ErrTokenExpired is returned once it passes.

# Authenticator

Authenticator.Verify checks a registration number and secret against the
bcrypt hash stored on the voter. Unknown voters and wrong secrets both
return ErrAuthFailed.
*/
package auth

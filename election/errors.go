// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
)

// Code identifies why an operation was rejected.
type Code string

const (
	CodeNoActiveElection   Code = "NoActiveElection"
	CodePhaseClosed        Code = "PhaseClosed"
	CodeTargetNotFound     Code = "TargetNotFound"
	CodeIneligibleLocality Code = "IneligibleLocality"
	CodeNotADelegate       Code = "NotADelegate"
	CodeDelegateUnapproved Code = "DelegateUnapproved"
	CodeVoterInactive      Code = "VoterInactive"
	CodeAlreadyVoted       Code = "AlreadyVoted"
	CodeCapacityExceeded   Code = "CapacityExceeded"
	CodeContention         Code = "Contention"
	CodeStoreUnavailable   Code = "StoreUnavailable"

	// Administrative outcomes
	CodeInvalidRequest       Code = "InvalidRequest"
	CodeInvalidTransition    Code = "InvalidTransition"
	CodeAlreadyRegistered    Code = "AlreadyRegistered"
	CodeActiveElectionExists Code = "ActiveElectionExists"
)

// VoteError is a rejected operation. It is a value: the caller renders
// Message and branches on Code.
type VoteError struct {
	Code    Code
	Message string
}

func (e *VoteError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func reject(code Code, format string, args ...any) *VoteError {
	return &VoteError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the rejection code carried by err. Errors that are not a
// VoteError are infrastructure failures and report CodeStoreUnavailable.
func CodeOf(err error) Code {
	var ve *VoteError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return CodeStoreUnavailable
}

// IsCode reports whether err is a VoteError with the given code.
func IsCode(err error, code Code) bool {
	var ve *VoteError
	return errors.As(err, &ve) && ve.Code == code
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/store"
)

// StatusFor maps a rejection code to its HTTP status.
func StatusFor(code election.Code) int {
	switch code {
	case election.CodeNoActiveElection, election.CodeTargetNotFound:
		return http.StatusNotFound
	case election.CodePhaseClosed, election.CodeAlreadyVoted, election.CodeCapacityExceeded,
		election.CodeInvalidTransition, election.CodeAlreadyRegistered, election.CodeActiveElectionExists:
		return http.StatusConflict
	case election.CodeIneligibleLocality, election.CodeNotADelegate,
		election.CodeDelegateUnapproved, election.CodeVoterInactive:
		return http.StatusForbidden
	case election.CodeContention:
		return http.StatusServiceUnavailable
	case election.CodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a rejection with its code. Anything else is logged and
// answered with a generic 500 so store details never reach the client.
func writeError(w http.ResponseWriter, err error, op string) {
	var ve *election.VoteError
	if errors.As(err, &ve) {
		middleware.CodedErrorResponse(w, StatusFor(ve.Code), string(ve.Code), ve.Message)
		return
	}

	slog.Error("request failed", "op", op, "error", err)
	middleware.CodedErrorResponse(w, http.StatusInternalServerError,
		string(election.CodeStoreUnavailable), "The service is temporarily unavailable")
}

func sourceOf(r *http.Request) election.Source {
	return election.Source{
		IP:        middleware.GetClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// notFoundAs turns store.ErrNotFound into a TargetNotFound rejection.
func notFoundAs(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &election.VoteError{Code: election.CodeTargetNotFound, Message: message}
	}
	return err
}

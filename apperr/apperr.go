// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"net/http"
)

// Error kinds. Callers wrap these with fmt.Errorf("...: %w", kind) and
// test with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrLivenessFailed     = errors.New("liveness check failed")
	ErrIdentityMismatch   = errors.New("identity mismatch")
	ErrServiceUnavailable = errors.New("external service unavailable")
	ErrDuplicateID        = errors.New("national id already registered")
	ErrDuplicateVote      = errors.New("vote already cast")
	ErrNotFound           = errors.New("not found")
	ErrNotEligible        = errors.New("voter not eligible")
	ErrSessionBlocked     = errors.New("voting session blocked")
	ErrElectionClosed     = errors.New("election not active")
	ErrUnauthorized       = errors.New("unauthorized")
)

var kinds = []struct {
	err    error
	name   string
	status int
}{
	{ErrInvalidInput, "invalid_input", http.StatusBadRequest},
	{ErrLivenessFailed, "liveness_failed", http.StatusUnprocessableEntity},
	{ErrIdentityMismatch, "identity_mismatch", http.StatusUnprocessableEntity},
	{ErrServiceUnavailable, "service_unavailable", http.StatusServiceUnavailable},
	{ErrDuplicateID, "duplicate_id", http.StatusConflict},
	{ErrDuplicateVote, "duplicate_vote", http.StatusConflict},
	{ErrNotFound, "not_found", http.StatusNotFound},
	{ErrNotEligible, "not_eligible", http.StatusForbidden},
	{ErrSessionBlocked, "session_blocked", http.StatusForbidden},
	{ErrElectionClosed, "election_closed", http.StatusConflict},
	{ErrUnauthorized, "unauthorized", http.StatusUnauthorized},
}

// Kind returns the short machine name of the first error kind err wraps,
// or "internal" if it wraps none.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the caller may retry the same request unchanged.
func Retryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

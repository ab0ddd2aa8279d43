package pulseauth

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEngineNotReady is returned when a method runs before Build wired all
	// required dependencies.
	ErrEngineNotReady = errors.New("engine not ready")

	// ErrInvalidContact indicates a contact value that fails the channel's
	// syntactic rules. Surfaced immediately; never worth retrying unchanged.
	ErrInvalidContact = errors.New("invalid contact")

	// ErrRateLimited indicates the attempt budget for the window is spent.
	// Returned wrapped in a RateLimitError carrying the retry-after hint.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidCredentials covers both "no such contact" and "wrong
	// password" so callers cannot enumerate registered contacts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked is returned when the failed-login counter reached the
	// configured ceiling. The password is not compared.
	ErrAccountLocked = errors.New("account locked")

	// ErrAccountInactive indicates a principal whose active flag is cleared.
	ErrAccountInactive = errors.New("account inactive")

	// ErrChallengeNotFound indicates no outstanding challenge for the
	// (contact, channel, purpose) tuple. Concurrent duplicate verifies see
	// this after the winner consumes the record.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrChallengeExpired indicates the challenge outlived its window.
	ErrChallengeExpired = errors.New("challenge expired")

	// ErrChallengeExhausted indicates the attempt counter is saturated. The
	// correct code no longer redeems the challenge.
	ErrChallengeExhausted = errors.New("challenge attempts exhausted")

	// ErrCodeMismatch indicates a wrong code; the attempt was counted.
	ErrCodeMismatch = errors.New("code mismatch")

	// ErrTokenInvalid is the single error for every token verification
	// failure. Malformed, expired, wrong kind, and revoked all collapse here
	// so the API is not an oracle; audit events retain the specific kind.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrPrincipalNotFound indicates no principal of either kind matched.
	ErrPrincipalNotFound = errors.New("principal not found")

	// ErrDispatchFailed indicates the message channel rejected delivery. The
	// underlying challenge remains valid for its natural expiry, so the
	// client may go through the resend path.
	ErrDispatchFailed = errors.New("message dispatch failed")

	// ErrStoreUnavailable indicates a transient backend failure. Not retried
	// here; the caller owns retry policy.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// RateLimitError carries the time until the window resets. It unwraps to
// ErrRateLimited so errors.Is keeps working.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

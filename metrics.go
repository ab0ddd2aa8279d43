package pulseauth

import "github.com/blupulse/pulseauth/internal/metrics"

// MetricID identifies one engine counter in a MetricsSnapshot.
type MetricID = metrics.MetricID

// MetricsSnapshot is a point-in-time copy of all engine counters.
type MetricsSnapshot = metrics.Snapshot

// Engine counter identifiers.
const (
	MetricOTPIssued         = metrics.MetricOTPIssued
	MetricOTPDispatchFailed = metrics.MetricOTPDispatchFailed
	MetricOTPResent         = metrics.MetricOTPResent
	MetricOTPVerified       = metrics.MetricOTPVerified
	MetricOTPMismatch       = metrics.MetricOTPMismatch
	MetricOTPExpired        = metrics.MetricOTPExpired
	MetricOTPExhausted      = metrics.MetricOTPExhausted
	MetricLoginSuccess      = metrics.MetricLoginSuccess
	MetricLoginFailure      = metrics.MetricLoginFailure
	MetricLoginLocked       = metrics.MetricLoginLocked
	MetricLoginInactive     = metrics.MetricLoginInactive
	MetricOTPLoginSuccess   = metrics.MetricOTPLoginSuccess
	MetricPasswordUpdated   = metrics.MetricPasswordUpdated
	MetricRefreshSuccess    = metrics.MetricRefreshSuccess
	MetricRefreshFailure    = metrics.MetricRefreshFailure
	MetricValidateSuccess   = metrics.MetricValidateSuccess
	MetricValidateFailure   = metrics.MetricValidateFailure
	MetricTokenRevoked      = metrics.MetricTokenRevoked
	MetricRateLimitHit      = metrics.MetricRateLimitHit
)

package internaldefs

import (
	pulseauth "github.com/blupulse/pulseauth"
)

// CounterDef binds one engine counter to its exported name.
type CounterDef struct {
	ID   pulseauth.MetricID
	Name string
	Help string
}

// CounterDefs is the canonical list of exported counters. Exporters iterate
// this slice; adding an engine counter means adding a row here.
var CounterDefs = []CounterDef{
	{ID: pulseauth.MetricOTPIssued, Name: "pulseauth_otp_issued_total", Help: "Issued OTP challenges."},
	{ID: pulseauth.MetricOTPDispatchFailed, Name: "pulseauth_otp_dispatch_failed_total", Help: "OTP deliveries rejected by the message channel."},
	{ID: pulseauth.MetricOTPResent, Name: "pulseauth_otp_resent_total", Help: "Re-deliveries of outstanding OTP challenges."},
	{ID: pulseauth.MetricOTPVerified, Name: "pulseauth_otp_verified_total", Help: "Successfully consumed OTP challenges."},
	{ID: pulseauth.MetricOTPMismatch, Name: "pulseauth_otp_mismatch_total", Help: "OTP verifications with a wrong code."},
	{ID: pulseauth.MetricOTPExpired, Name: "pulseauth_otp_expired_total", Help: "OTP verifications against an expired challenge."},
	{ID: pulseauth.MetricOTPExhausted, Name: "pulseauth_otp_exhausted_total", Help: "OTP verifications against an exhausted challenge."},
	{ID: pulseauth.MetricLoginSuccess, Name: "pulseauth_login_success_total", Help: "Successful password logins."},
	{ID: pulseauth.MetricLoginFailure, Name: "pulseauth_login_failure_total", Help: "Failed login attempts."},
	{ID: pulseauth.MetricLoginLocked, Name: "pulseauth_login_locked_total", Help: "Logins rejected on a locked account."},
	{ID: pulseauth.MetricLoginInactive, Name: "pulseauth_login_inactive_total", Help: "Logins rejected on an inactive account."},
	{ID: pulseauth.MetricOTPLoginSuccess, Name: "pulseauth_otp_login_success_total", Help: "Successful OTP logins."},
	{ID: pulseauth.MetricPasswordUpdated, Name: "pulseauth_password_updated_total", Help: "OTP-gated password updates."},
	{ID: pulseauth.MetricRefreshSuccess, Name: "pulseauth_refresh_success_total", Help: "Successful token renewals."},
	{ID: pulseauth.MetricRefreshFailure, Name: "pulseauth_refresh_failure_total", Help: "Failed token renewals."},
	{ID: pulseauth.MetricValidateSuccess, Name: "pulseauth_validate_success_total", Help: "Successful token validations."},
	{ID: pulseauth.MetricValidateFailure, Name: "pulseauth_validate_failure_total", Help: "Failed token validations."},
	{ID: pulseauth.MetricTokenRevoked, Name: "pulseauth_token_revoked_total", Help: "Revoked tokens."},
	{ID: pulseauth.MetricRateLimitHit, Name: "pulseauth_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
}

package pulseauth

import (
	"context"
	"errors"
	"time"

	"github.com/blupulse/pulseauth/contact"
	"github.com/blupulse/pulseauth/internal/audit"
	"github.com/blupulse/pulseauth/internal/flows"
	"github.com/blupulse/pulseauth/internal/metrics"
)

// PasswordLogin authenticates a password claim for the contact and mints a
// token pair. Unknown contacts and wrong passwords both return
// ErrInvalidCredentials; a locked end-user account returns ErrAccountLocked
// without touching the password hash.
func (e *Engine) PasswordLogin(ctx context.Context, contactValue string, channel contact.Channel, passwordValue string) (*AuthResult, error) {
	canonical, err := validateContact(contactValue, channel)
	if err != nil {
		return nil, err
	}
	if err := e.checkRate(ctx, canonical, ActionLogin); err != nil {
		return nil, err
	}

	principal, tokens, err := flows.RunPasswordLogin(ctx, passwordValue, flows.PasswordLoginDeps{
		FailureCeiling: e.config.Login.FailedAttemptCeiling,
		Resolve: func(ctx context.Context) (flows.Principal, error) {
			principal, err := e.resolveContact(ctx, canonical, channel)
			if errors.Is(err, ErrPrincipalNotFound) {
				// Collapse to the same error as a wrong password.
				return flows.Principal{}, ErrInvalidCredentials
			}
			return principal, err
		},
		VerifyPassword: e.hasher.Verify,
		RecordFailure:  e.recordLoginFailure,
		RecordSuccess:  e.recordLoginSuccess,
		IssueTokens:    e.issueTokens,
		Errors: flows.PasswordLoginErrors{
			EngineNotReady:     ErrEngineNotReady,
			InvalidCredentials: ErrInvalidCredentials,
			AccountLocked:      ErrAccountLocked,
			AccountInactive:    ErrAccountInactive,
		},
	})
	if err != nil {
		e.observeLoginFailure(ctx, canonical, channel, "login.password", err)
		return nil, err
	}

	e.metrics.Inc(metrics.MetricLoginSuccess)
	e.emitAudit(ctx, audit.Event{
		EventType:   "login.password",
		SubjectID:   principal.SubjectID,
		SubjectKind: principal.Kind,
		Contact:     canonical,
		Channel:     channel.String(),
		Success:     true,
	})

	return authResult(principal, tokens), nil
}

// OTPLogin consumes a login-purpose challenge and mints a token pair for the
// resolved principal. Proving control of the contact also marks the channel
// verified, matching the registration path.
func (e *Engine) OTPLogin(ctx context.Context, contactValue string, channel contact.Channel, code string) (*AuthResult, error) {
	canonical, err := validateContact(contactValue, channel)
	if err != nil {
		return nil, err
	}
	if err := e.checkRate(ctx, canonical, ActionLogin); err != nil {
		return nil, err
	}

	principal, tokens, err := flows.RunOTPLogin(ctx, flows.OTPLoginDeps{
		ConsumeChallenge: func(ctx context.Context) error {
			return e.consumeChallenge(ctx, canonical, channel, code, PurposeLogin)
		},
		Resolve: func(ctx context.Context) (flows.Principal, error) {
			return e.resolveContact(ctx, canonical, channel)
		},
		MarkVerified: func(ctx context.Context, principal flows.Principal) error {
			return e.markContactVerified(ctx, principal, channel)
		},
		RecordSuccess: e.recordLoginSuccess,
		IssueTokens:   e.issueTokens,
		Errors: flows.OTPLoginErrors{
			EngineNotReady:  ErrEngineNotReady,
			AccountInactive: ErrAccountInactive,
		},
	})
	if err != nil {
		e.observeLoginFailure(ctx, canonical, channel, "login.otp", err)
		return nil, err
	}

	e.metrics.Inc(metrics.MetricOTPLoginSuccess)
	e.emitAudit(ctx, audit.Event{
		EventType:   "login.otp",
		SubjectID:   principal.SubjectID,
		SubjectKind: principal.Kind,
		Contact:     canonical,
		Channel:     channel.String(),
		Success:     true,
	})

	return authResult(principal, tokens), nil
}

// UpdatePasswordWithOTP consumes a password-update challenge and writes a
// fresh hash for the resolved principal. The caller proves control of the
// contact; no old password is required.
func (e *Engine) UpdatePasswordWithOTP(ctx context.Context, contactValue string, channel contact.Channel, code, newPassword string) error {
	canonical, err := validateContact(contactValue, channel)
	if err != nil {
		return err
	}

	principal, err := flows.RunPasswordUpdate(ctx, newPassword, flows.PasswordUpdateDeps{
		ConsumeChallenge: func(ctx context.Context) error {
			return e.consumeChallenge(ctx, canonical, channel, code, PurposePasswordUpdate)
		},
		Resolve: func(ctx context.Context) (flows.Principal, error) {
			return e.resolveContact(ctx, canonical, channel)
		},
		HashPassword:      e.hasher.Hash,
		StoreHash:         e.updatePasswordHash,
		ErrEngineNotReady: ErrEngineNotReady,
	})
	if err != nil {
		return err
	}

	e.metrics.Inc(metrics.MetricPasswordUpdated)
	e.emitAudit(ctx, audit.Event{
		EventType:   "password.update",
		SubjectID:   principal.SubjectID,
		SubjectKind: principal.Kind,
		Contact:     canonical,
		Channel:     channel.String(),
		Success:     true,
	})

	return nil
}

func (e *Engine) recordLoginFailure(ctx context.Context, principal flows.Principal) error {
	// Only end users carry a failed-login counter.
	if PrincipalKind(principal.Kind) != KindEndUser {
		return nil
	}
	if err := e.endUsers.RecordLoginFailure(ctx, principal.SubjectID); err != nil {
		return wrapUnavailable(err)
	}
	return nil
}

func (e *Engine) recordLoginSuccess(ctx context.Context, principal flows.Principal) error {
	now := time.Now().UTC()
	switch PrincipalKind(principal.Kind) {
	case KindEndUser:
		if err := e.endUsers.RecordLoginSuccess(ctx, principal.SubjectID, now); err != nil {
			return wrapUnavailable(err)
		}
	case KindOperatorMember:
		if e.operators == nil {
			return ErrPrincipalNotFound
		}
		if err := e.operators.RecordLoginSuccess(ctx, principal.SubjectID, now); err != nil {
			return wrapUnavailable(err)
		}
	}
	return nil
}

func (e *Engine) observeLoginFailure(ctx context.Context, canonical string, channel contact.Channel, eventType string, err error) {
	switch {
	case errors.Is(err, ErrAccountLocked):
		e.metrics.Inc(metrics.MetricLoginLocked)
	case errors.Is(err, ErrAccountInactive):
		e.metrics.Inc(metrics.MetricLoginInactive)
	default:
		e.metrics.Inc(metrics.MetricLoginFailure)
	}
	e.emitAudit(ctx, audit.Event{
		EventType: eventType,
		Contact:   canonical,
		Channel:   channel.String(),
		Error:     err.Error(),
	})
}

func authResult(principal flows.Principal, tokens flows.TokenPair) *AuthResult {
	return &AuthResult{
		Principal: principalRef(principal),
		Tokens: TokenPair{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
			ExpiresIn:    tokens.ExpiresIn,
		},
	}
}

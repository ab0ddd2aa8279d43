package pulseauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blupulse/pulseauth/contact"
	"github.com/blupulse/pulseauth/internal"
	"github.com/blupulse/pulseauth/internal/audit"
	"github.com/blupulse/pulseauth/internal/metrics"
	"github.com/blupulse/pulseauth/internal/otp"
)

// SendOTP issues a fresh challenge for the (contact, channel, purpose) tuple
// and dispatches the code. Issuing replaces any outstanding challenge for the
// same tuple in a single write. When dispatch fails the challenge stays
// persisted for its natural expiry and the call returns ErrDispatchFailed, so
// the client can go through ResendOTP.
func (e *Engine) SendOTP(ctx context.Context, contactValue string, channel contact.Channel, purpose string) error {
	canonical, err := validateContact(contactValue, channel)
	if err != nil {
		return err
	}
	if err := e.checkRate(ctx, canonical, rateActionForPurpose(purpose)); err != nil {
		return err
	}

	code, err := internal.NewOTP(e.config.OTP.Length)
	if err != nil {
		return err
	}

	key := otp.Key{Contact: canonical, Channel: channel.String(), Purpose: purpose}
	if err := e.challenges.Put(ctx, key, code, e.config.OTP.Expiry); err != nil {
		return wrapUnavailable(err)
	}

	e.metrics.Inc(metrics.MetricOTPIssued)
	e.emitAudit(ctx, audit.Event{
		EventType: "otp.issue",
		Contact:   canonical,
		Channel:   channel.String(),
		Purpose:   purpose,
		Success:   true,
	})

	return e.dispatchCode(ctx, canonical, channel, purpose, code)
}

// ResendOTP re-delivers the outstanding challenge without rotating the code,
// so a slow first delivery cannot invalidate a code the user is about to
// receive. Fails with ErrChallengeNotFound when nothing is outstanding.
func (e *Engine) ResendOTP(ctx context.Context, contactValue string, channel contact.Channel, purpose string) error {
	canonical, err := validateContact(contactValue, channel)
	if err != nil {
		return err
	}
	if err := e.checkRate(ctx, canonical, rateActionForPurpose(purpose)); err != nil {
		return err
	}

	key := otp.Key{Contact: canonical, Channel: channel.String(), Purpose: purpose}
	challenge, err := e.challenges.Get(ctx, key)
	if err != nil {
		if errors.Is(err, otp.ErrNotFound) {
			return ErrChallengeNotFound
		}
		return wrapUnavailable(err)
	}

	e.metrics.Inc(metrics.MetricOTPResent)
	e.emitAudit(ctx, audit.Event{
		EventType: "otp.resend",
		Contact:   canonical,
		Channel:   channel.String(),
		Purpose:   purpose,
		Success:   true,
	})

	return e.dispatchCode(ctx, canonical, channel, purpose, challenge.Code)
}

// VerifyOTP consumes the challenge and returns the resolved principal. A
// challenge is consumed by at most one caller; concurrent duplicates observe
// ErrChallengeNotFound. Verifying a registration challenge marks the contact
// channel verified on the principal's record.
func (e *Engine) VerifyOTP(ctx context.Context, contactValue string, channel contact.Channel, code, purpose string) (*PrincipalRef, error) {
	canonical, err := validateContact(contactValue, channel)
	if err != nil {
		return nil, err
	}

	if err := e.consumeChallenge(ctx, canonical, channel, code, purpose); err != nil {
		return nil, err
	}

	principal, err := e.resolveContact(ctx, canonical, channel)
	if err != nil {
		return nil, err
	}

	if purpose == PurposeRegistration {
		if err := e.markContactVerified(ctx, principal, channel); err != nil {
			return nil, err
		}
	}

	e.metrics.Inc(metrics.MetricOTPVerified)
	e.emitAudit(ctx, audit.Event{
		EventType:   "otp.verify",
		SubjectID:   principal.SubjectID,
		SubjectKind: principal.Kind,
		Contact:     canonical,
		Channel:     channel.String(),
		Purpose:     purpose,
		Success:     true,
	})

	ref := principalRef(principal)
	return &ref, nil
}

// consumeChallenge runs the atomic consume and maps store outcomes onto the
// public taxonomy. The audit event keeps the specific failure kind.
func (e *Engine) consumeChallenge(ctx context.Context, canonical string, channel contact.Channel, code, purpose string) error {
	key := otp.Key{Contact: canonical, Channel: channel.String(), Purpose: purpose}
	err := e.challenges.Consume(ctx, key, code, e.config.OTP.MaxAttempts, time.Now())
	if err == nil {
		return nil
	}

	var mapped error
	switch {
	case errors.Is(err, otp.ErrNotFound):
		mapped = ErrChallengeNotFound
	case errors.Is(err, otp.ErrExpired):
		e.metrics.Inc(metrics.MetricOTPExpired)
		mapped = ErrChallengeExpired
	case errors.Is(err, otp.ErrExhausted):
		e.metrics.Inc(metrics.MetricOTPExhausted)
		mapped = ErrChallengeExhausted
	case errors.Is(err, otp.ErrMismatch):
		e.metrics.Inc(metrics.MetricOTPMismatch)
		mapped = ErrCodeMismatch
	default:
		return wrapUnavailable(err)
	}

	e.emitAudit(ctx, audit.Event{
		EventType: "otp.verify",
		Contact:   canonical,
		Channel:   channel.String(),
		Purpose:   purpose,
		Error:     err.Error(),
	})
	return mapped
}

// dispatchCode delivers the code under the configured timeout. The challenge
// is already persisted; delivery failure never rolls it back.
func (e *Engine) dispatchCode(ctx context.Context, canonical string, channel contact.Channel, purpose, code string) error {
	sender, ok := e.senders[channel]
	if !ok {
		e.metrics.Inc(metrics.MetricOTPDispatchFailed)
		return fmt.Errorf("%w: no sender for channel %s", ErrDispatchFailed, channel)
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, e.config.Dispatch.Timeout)
	defer cancel()

	text := fmt.Sprintf("%s is your verification code. It expires in %d minutes.",
		code, int(e.config.OTP.Expiry.Minutes()))

	if err := sender.Deliver(dispatchCtx, canonical, text); err != nil {
		e.metrics.Inc(metrics.MetricOTPDispatchFailed)
		e.emitAudit(ctx, audit.Event{
			EventType: "otp.dispatch",
			Contact:   canonical,
			Channel:   channel.String(),
			Purpose:   purpose,
			Error:     err.Error(),
		})
		return errors.Join(ErrDispatchFailed, err)
	}
	return nil
}

// rateActionForPurpose maps challenge purposes onto rate budget actions.
// Registration and password-update sends have their own budgets; everything
// else shares the generic send budget.
func rateActionForPurpose(purpose string) string {
	switch purpose {
	case PurposeRegistration:
		return ActionRegistration
	case PurposePasswordUpdate:
		return ActionPasswordUpdate
	default:
		return ActionOTPSend
	}
}

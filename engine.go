package pulseauth

import (
	"context"
	"errors"
	"time"

	"github.com/blupulse/pulseauth/contact"
	"github.com/blupulse/pulseauth/internal/audit"
	"github.com/blupulse/pulseauth/internal/metrics"
	"github.com/blupulse/pulseauth/internal/otp"
	"github.com/blupulse/pulseauth/internal/rate"
	"github.com/blupulse/pulseauth/internal/revoke"
	"github.com/blupulse/pulseauth/jwt"
	"github.com/blupulse/pulseauth/password"
)

// Engine is the authentication core. Construct it with a Builder; all
// methods are safe for concurrent use after Build.
type Engine struct {
	config Config

	tokens      *jwt.Manager
	hasher      *password.Hasher
	challenges  *otp.Store
	limiter     *rate.Limiter
	revocations *revoke.Store
	metrics     *metrics.Metrics
	audit       *audit.Dispatcher

	endUsers  EndUserProvider
	operators OperatorProvider
	senders   map[contact.Channel]MessageSender
}

// Close flushes the audit dispatcher. The engine must not be used afterwards.
func (e *Engine) Close() {
	e.audit.Close()
}

// MetricsSnapshot returns a point-in-time copy of all engine counters.
func (e *Engine) MetricsSnapshot() metrics.Snapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were shed under backpressure.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// CheckRate applies the action's policy to the identifier and counts the
// attempt. Exposed so hosts can gate by client IP on top of the engine's own
// per-contact gating; the window logic lives only here.
func (e *Engine) CheckRate(ctx context.Context, identifier, action string) error {
	return e.checkRate(ctx, identifier, action)
}

func (e *Engine) checkRate(ctx context.Context, identifier, action string) error {
	retryAfter, err := e.limiter.CheckAndRecord(ctx, identifier, action)
	if err == nil {
		return nil
	}
	if errors.Is(err, rate.ErrLimited) {
		e.metrics.Inc(metrics.MetricRateLimitHit)
		e.emitAudit(ctx, audit.Event{
			EventType: "rate.limited",
			Contact:   identifier,
			Metadata:  map[string]string{"action": action},
		})
		return &RateLimitError{RetryAfter: retryAfter}
	}
	if errors.Is(err, rate.ErrUnknownAction) {
		return err
	}
	return wrapUnavailable(err)
}

// emitAudit stamps the event and hands it to the async dispatcher. A nil
// dispatcher (audit disabled) makes this a no-op.
func (e *Engine) emitAudit(ctx context.Context, event audit.Event) {
	if e.audit == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	e.audit.Emit(ctx, event)
}

func wrapUnavailable(err error) error {
	return errors.Join(ErrStoreUnavailable, err)
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0)
}

// validateContact canonicalizes the contact value or fails with
// ErrInvalidContact.
func validateContact(value string, channel contact.Channel) (string, error) {
	canonical, err := contact.Validate(value, channel)
	if err != nil {
		return "", errors.Join(ErrInvalidContact, err)
	}
	return canonical, nil
}

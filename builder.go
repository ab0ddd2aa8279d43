package pulseauth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/blupulse/pulseauth/contact"
	"github.com/blupulse/pulseauth/internal/audit"
	"github.com/blupulse/pulseauth/internal/metrics"
	"github.com/blupulse/pulseauth/internal/otp"
	"github.com/blupulse/pulseauth/internal/rate"
	"github.com/blupulse/pulseauth/internal/revoke"
	"github.com/blupulse/pulseauth/jwt"
	"github.com/blupulse/pulseauth/password"
)

// Builder assembles an Engine. Collect dependencies with the With methods,
// then call Build once; the builder is not reusable afterwards.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	endUsers  EndUserProvider
	operators OperatorProvider
	senders   map[contact.Channel]MessageSender
	auditSink audit.Sink
}

// New starts a builder with DefaultConfig.
func New() *Builder {
	return &Builder{
		config:  DefaultConfig(),
		senders: make(map[contact.Channel]MessageSender),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the shared Redis client backing the challenge, rate, and
// revocation stores.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithEndUserProvider sets the end-user persistence.
func (b *Builder) WithEndUserProvider(provider EndUserProvider) *Builder {
	b.endUsers = provider
	return b
}

// WithOperatorProvider sets the operator-member persistence. Optional; an
// engine without it serves end users only.
func (b *Builder) WithOperatorProvider(provider OperatorProvider) *Builder {
	b.operators = provider
	return b
}

// WithEmailSender sets the delivery backend for the email channel.
func (b *Builder) WithEmailSender(sender MessageSender) *Builder {
	b.senders[contact.ChannelEmail] = sender
	return b
}

// WithMessagingSender sets the delivery backend for the messaging channel.
func (b *Builder) WithMessagingSender(sender MessageSender) *Builder {
	b.senders[contact.ChannelMessaging] = sender
	return b
}

// WithAuditSink sets where audit events land. Without one, an enabled audit
// dispatcher drops events into a NoOpSink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires the stores, and returns a ready
// Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.endUsers == nil {
		return nil, errors.New("end user provider required")
	}
	if len(b.senders) == 0 {
		return nil, errors.New("at least one message sender required")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(cfg.jwtConfig())
	if err != nil {
		return nil, err
	}
	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}

	senders := make(map[contact.Channel]MessageSender, len(b.senders))
	for channel, sender := range b.senders {
		senders[channel] = sender
	}

	engine := &Engine{
		config:      cfg,
		tokens:      tokens,
		hasher:      hasher,
		challenges:  otp.NewStore(b.redis, cfg.OTP.KeyPrefix),
		limiter:     rate.New(b.redis, cfg.RateLimit.KeyPrefix, cfg.ratePolicies()),
		revocations: revoke.NewStore(b.redis, cfg.Token.KeyPrefix),
		metrics:     metrics.New(cfg.metricsConfig()),
		audit:       audit.NewDispatcher(cfg.auditConfig(), b.auditSink),
		endUsers:    b.endUsers,
		operators:   b.operators,
		senders:     senders,
	}

	return engine, nil
}

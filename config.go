package pulseauth

import (
	"errors"
	"time"

	"github.com/blupulse/pulseauth/internal/audit"
	"github.com/blupulse/pulseauth/internal/metrics"
	"github.com/blupulse/pulseauth/internal/rate"
	"github.com/blupulse/pulseauth/jwt"
	"github.com/blupulse/pulseauth/password"
)

// Config is the engine configuration. It is copied at Build time and
// immutable afterwards; mutating the original struct has no effect on a
// running engine.
type Config struct {
	OTP       OTPConfig
	Token     TokenConfig
	Password  password.Config
	RateLimit RateLimitConfig
	Login     LoginConfig
	Dispatch  DispatchConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

// OTPConfig tunes challenge issuance and verification.
type OTPConfig struct {
	// Length is the number of code digits (4..10).
	Length int
	// Expiry bounds the challenge lifetime.
	Expiry time.Duration
	// MaxAttempts is the wrong-code budget before the challenge is
	// exhausted.
	MaxAttempts int
	// KeyPrefix namespaces challenge keys in Redis.
	KeyPrefix string
}

// TokenConfig tunes the token service.
type TokenConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod jwt.SigningMethod
	// Secret is the HS256 signing secret, minimum 32 bytes.
	Secret []byte
	// PrivateKey and PublicKey carry ed25519 material (raw or PEM) when
	// SigningMethod is ed25519.
	PrivateKey []byte
	PublicKey  []byte
	Issuer     string
	Leeway     time.Duration
	// RevokeOnRefresh blacklists the presented refresh token after each
	// successful renewal. Off by default: the same refresh token may mint
	// several pairs over its life.
	RevokeOnRefresh bool
	// KeyPrefix namespaces revocation keys in Redis.
	KeyPrefix string
}

// RatePolicy is the fixed attempt budget for one action.
type RatePolicy struct {
	MaxAttempts int
	Window      time.Duration
}

// RateLimitConfig maps action names to their policies. Unknown actions are
// rejected, not silently admitted.
type RateLimitConfig struct {
	Policies  map[string]RatePolicy
	KeyPrefix string
}

// LoginConfig tunes the password flow.
type LoginConfig struct {
	// FailedAttemptCeiling locks an end-user account after this many
	// consecutive failures. Zero disables the lock; the rate limiter still
	// applies.
	FailedAttemptCeiling int
}

// DispatchConfig bounds outbound message delivery.
type DispatchConfig struct {
	// Timeout caps how long a send blocks on the MessageSender. The
	// challenge is persisted before dispatch, so a timeout never loses it.
	Timeout time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events under backpressure instead of blocking the
	// authentication path.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the stock policy set: 6-digit codes valid 5 minutes
// with 3 attempts, 30m/7d token pair, and the per-action rate budgets.
// Signing material is not defaulted; the caller must supply it.
func DefaultConfig() Config {
	return Config{
		OTP: OTPConfig{
			Length:      6,
			Expiry:      5 * time.Minute,
			MaxAttempts: 3,
		},
		Token: TokenConfig{
			AccessTTL:     30 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: jwt.MethodHS256,
		},
		Password: password.DefaultConfig(),
		RateLimit: RateLimitConfig{
			Policies: map[string]RatePolicy{
				ActionOTPSend:        {MaxAttempts: 3, Window: 5 * time.Minute},
				ActionLogin:          {MaxAttempts: 5, Window: 15 * time.Minute},
				ActionRegistration:   {MaxAttempts: 3, Window: 10 * time.Minute},
				ActionPasswordUpdate: {MaxAttempts: 3, Window: 10 * time.Minute},
			},
		},
		Login: LoginConfig{
			FailedAttemptCeiling: 5,
		},
		Dispatch: DispatchConfig{
			Timeout: 5 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the tunables that NewManager and NewHasher do not already
// cover.
func (c *Config) Validate() error {
	if c.OTP.Length < 4 || c.OTP.Length > 10 {
		return errors.New("otp length must be between 4 and 10 digits")
	}
	if c.OTP.Expiry <= 0 {
		return errors.New("otp expiry must be positive")
	}
	if c.OTP.MaxAttempts < 1 {
		return errors.New("otp max attempts must be at least 1")
	}
	if len(c.RateLimit.Policies) == 0 {
		return errors.New("at least one rate limit policy required")
	}
	for action, policy := range c.RateLimit.Policies {
		if policy.MaxAttempts < 1 || policy.Window <= 0 {
			return errors.New("invalid rate limit policy for action " + action)
		}
	}
	if c.Login.FailedAttemptCeiling < 0 {
		return errors.New("failed attempt ceiling must not be negative")
	}
	if c.Dispatch.Timeout <= 0 {
		return errors.New("dispatch timeout must be positive")
	}
	return nil
}

func cloneConfig(c Config) Config {
	cloned := c

	cloned.Token.Secret = append([]byte(nil), c.Token.Secret...)
	cloned.Token.PrivateKey = append([]byte(nil), c.Token.PrivateKey...)
	cloned.Token.PublicKey = append([]byte(nil), c.Token.PublicKey...)

	cloned.RateLimit.Policies = make(map[string]RatePolicy, len(c.RateLimit.Policies))
	for action, policy := range c.RateLimit.Policies {
		cloned.RateLimit.Policies[action] = policy
	}

	return cloned
}

func (c *Config) jwtConfig() jwt.Config {
	return jwt.Config{
		AccessTTL:     c.Token.AccessTTL,
		RefreshTTL:    c.Token.RefreshTTL,
		SigningMethod: c.Token.SigningMethod,
		Secret:        c.Token.Secret,
		PrivateKey:    c.Token.PrivateKey,
		PublicKey:     c.Token.PublicKey,
		Issuer:        c.Token.Issuer,
		Leeway:        c.Token.Leeway,
	}
}

func (c *Config) ratePolicies() map[string]rate.Policy {
	policies := make(map[string]rate.Policy, len(c.RateLimit.Policies))
	for action, policy := range c.RateLimit.Policies {
		policies[action] = rate.Policy{
			MaxAttempts: policy.MaxAttempts,
			Window:      policy.Window,
		}
	}
	return policies
}

func (c *Config) auditConfig() audit.Config {
	return audit.Config{
		Enabled:    c.Audit.Enabled,
		BufferSize: c.Audit.BufferSize,
		DropIfFull: c.Audit.DropIfFull,
	}
}

func (c *Config) metricsConfig() metrics.Config {
	return metrics.Config{Enabled: c.Metrics.Enabled}
}

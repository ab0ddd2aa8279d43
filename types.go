package pulseauth

import (
	"context"
	"time"

	"github.com/blupulse/pulseauth/contact"
)

// PrincipalKind tags which identity store a subject belongs to.
type PrincipalKind string

const (
	// KindEndUser is a general end-user account.
	KindEndUser PrincipalKind = "end_user"
	// KindOperatorMember is a member of an operator organization.
	KindOperatorMember PrincipalKind = "operator_member"
)

// Valid reports whether k is a known principal kind.
func (k PrincipalKind) Valid() bool {
	return k == KindEndUser || k == KindOperatorMember
}

// Challenge purposes with engine-level behavior. Purposes are open strings;
// anything else passes through opaquely.
const (
	// PurposeRegistration activates the contact channel on verify.
	PurposeRegistration = "registration"
	// PurposeLogin is consumed by OTPLogin.
	PurposeLogin = "login"
	// PurposePasswordUpdate is consumed by UpdatePasswordWithOTP.
	PurposePasswordUpdate = "password_update"
)

// Rate limit action names with default policies.
const (
	ActionOTPSend        = "otp_send"
	ActionLogin          = "login"
	ActionRegistration   = "registration"
	ActionPasswordUpdate = "password_update"
)

// EndUserRecord is the engine's view of an end-user row.
type EndUserRecord struct {
	ID            string
	Email         string
	Phone         string
	PasswordHash  string
	FullName      string
	Active        bool
	EmailVerified bool
	PhoneVerified bool
	FailedLogins  int
	LastLoginAt   time.Time
}

// OperatorRole is the coarse permission level of an operator member.
type OperatorRole string

const (
	RoleAdmin   OperatorRole = "admin"
	RoleManager OperatorRole = "manager"
	RoleViewer  OperatorRole = "viewer"
)

// OperatorMemberRecord is the engine's view of an operator-member row.
type OperatorMemberRecord struct {
	ID            string
	OrgID         string
	Email         string
	Phone         string
	PasswordHash  string
	Role          OperatorRole
	Active        bool
	EmailVerified bool
	PhoneVerified bool
	LastLoginAt   time.Time
}

// PrincipalRef is the resolved identity handed back to callers and used for
// downstream authorization checks. OrgID and Role are set only for operator
// members.
type PrincipalRef struct {
	SubjectID string
	Kind      PrincipalKind
	OrgID     string
	Role      OperatorRole
	Active    bool
}

// TokenPair is an access token plus a refresh token issued together.
// ExpiresIn is the access token lifetime in seconds.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// AuthResult is the outcome of a successful login.
type AuthResult struct {
	Principal PrincipalRef
	Tokens    TokenPair
}

// MessageSender delivers a text to a contact over one channel. Implementations
// are caller-supplied (SMTP relay, messaging gateway); the engine treats them
// as opaque and applies its own timeout.
type MessageSender interface {
	Deliver(ctx context.Context, contactValue, text string) error
}

// EndUserProvider is the caller-supplied persistence for end users. Lookups
// return (nil, nil) when no record matches; errors are reserved for backend
// failures.
type EndUserProvider interface {
	GetByContact(ctx context.Context, contactValue string, channel contact.Channel) (*EndUserRecord, error)
	GetByID(ctx context.Context, id string) (*EndUserRecord, error)

	// RecordLoginSuccess resets the failed-login counter and stamps the
	// last-login time.
	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error
	// RecordLoginFailure increments the failed-login counter.
	RecordLoginFailure(ctx context.Context, id string) error

	MarkContactVerified(ctx context.Context, id string, channel contact.Channel) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// OperatorProvider is the caller-supplied persistence for operator members.
// Lookups return (nil, nil) when no record matches. Operator members carry no
// failed-login counter; the rate limiter is their only brute-force ceiling.
type OperatorProvider interface {
	GetByContact(ctx context.Context, contactValue string, channel contact.Channel) (*OperatorMemberRecord, error)
	GetByID(ctx context.Context, id string) (*OperatorMemberRecord, error)

	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error
	MarkContactVerified(ctx context.Context, id string, channel contact.Channel) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

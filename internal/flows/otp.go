package flows

import "context"

// OTPLoginErrors are the sentinel errors an OTP login can surface.
type OTPLoginErrors struct {
	EngineNotReady  error
	AccountInactive error
}

// OTPLoginDeps wires challenge consumption and bookkeeping for the OTP login
// flow.
type OTPLoginDeps struct {
	ConsumeChallenge func(ctx context.Context) error
	Resolve          func(ctx context.Context) (Principal, error)
	MarkVerified     func(ctx context.Context, principal Principal) error
	RecordSuccess    func(ctx context.Context, principal Principal) error
	IssueTokens      func(ctx context.Context, principal Principal) (TokenPair, error)

	Errors OTPLoginErrors
}

// RunOTPLogin consumes a login challenge and mints a pair for the resolved
// principal. The challenge is consumed before the principal lookup; a code
// spent on an unknown or inactive contact stays spent.
func RunOTPLogin(ctx context.Context, deps OTPLoginDeps) (Principal, TokenPair, error) {
	if deps.ConsumeChallenge == nil || deps.Resolve == nil || deps.IssueTokens == nil {
		return Principal{}, TokenPair{}, deps.Errors.EngineNotReady
	}

	if err := deps.ConsumeChallenge(ctx); err != nil {
		return Principal{}, TokenPair{}, err
	}

	principal, err := deps.Resolve(ctx)
	if err != nil {
		return Principal{}, TokenPair{}, err
	}
	if !principal.Active {
		return Principal{}, TokenPair{}, deps.Errors.AccountInactive
	}

	// Proving control of the contact verifies the channel as a side effect.
	if deps.MarkVerified != nil {
		if err := deps.MarkVerified(ctx, principal); err != nil {
			return Principal{}, TokenPair{}, err
		}
	}
	if deps.RecordSuccess != nil {
		if err := deps.RecordSuccess(ctx, principal); err != nil {
			return Principal{}, TokenPair{}, err
		}
	}

	tokens, err := deps.IssueTokens(ctx, principal)
	if err != nil {
		return Principal{}, TokenPair{}, err
	}

	return principal, tokens, nil
}

// PasswordUpdateDeps wires challenge consumption and the hash write for the
// OTP-gated password change flow.
type PasswordUpdateDeps struct {
	ConsumeChallenge func(ctx context.Context) error
	Resolve          func(ctx context.Context) (Principal, error)
	HashPassword     func(password string) (string, error)
	StoreHash        func(ctx context.Context, principal Principal, hash string) error

	ErrEngineNotReady error
}

// RunPasswordUpdate consumes a password-update challenge and writes the new
// hash for the resolved principal.
func RunPasswordUpdate(ctx context.Context, newPassword string, deps PasswordUpdateDeps) (Principal, error) {
	if deps.ConsumeChallenge == nil || deps.Resolve == nil || deps.HashPassword == nil || deps.StoreHash == nil {
		return Principal{}, deps.ErrEngineNotReady
	}

	if err := deps.ConsumeChallenge(ctx); err != nil {
		return Principal{}, err
	}

	principal, err := deps.Resolve(ctx)
	if err != nil {
		return Principal{}, err
	}

	hash, err := deps.HashPassword(newPassword)
	if err != nil {
		return Principal{}, err
	}
	if err := deps.StoreHash(ctx, principal, hash); err != nil {
		return Principal{}, err
	}

	return principal, nil
}

package flows

import "context"

// TokenPair is the flow-level result of minting tokens for a principal.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// PasswordLoginErrors are the sentinel errors a password login can surface.
type PasswordLoginErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	AccountLocked      error
	AccountInactive    error
}

// PasswordLoginDeps wires resolution, verification, and bookkeeping for the
// password flow.
type PasswordLoginDeps struct {
	FailureCeiling int

	Resolve        func(ctx context.Context) (Principal, error)
	VerifyPassword func(password, hash string) (bool, error)
	RecordFailure  func(ctx context.Context, principal Principal) error
	RecordSuccess  func(ctx context.Context, principal Principal) error
	IssueTokens    func(ctx context.Context, principal Principal) (TokenPair, error)

	Errors PasswordLoginErrors
}

// RunPasswordLogin authenticates a password claim against a resolved
// principal.
//
// Order matters here. The lock ceiling is checked before the hash comparison
// so a locked account never burns argon2 work, and the active flag is checked
// only after the password matched so an inactive probe cannot distinguish
// "wrong password" from "right password, disabled account" any earlier than
// an active one could.
func RunPasswordLogin(ctx context.Context, password string, deps PasswordLoginDeps) (Principal, TokenPair, error) {
	if deps.Resolve == nil || deps.VerifyPassword == nil || deps.IssueTokens == nil {
		return Principal{}, TokenPair{}, deps.Errors.EngineNotReady
	}

	principal, err := deps.Resolve(ctx)
	if err != nil {
		return Principal{}, TokenPair{}, err
	}
	if principal.PasswordHash == "" {
		// OTP-only account; a password claim can never match.
		return Principal{}, TokenPair{}, deps.Errors.InvalidCredentials
	}

	if deps.FailureCeiling > 0 && principal.FailedLogins >= deps.FailureCeiling {
		return Principal{}, TokenPair{}, deps.Errors.AccountLocked
	}

	match, err := deps.VerifyPassword(password, principal.PasswordHash)
	if err != nil {
		return Principal{}, TokenPair{}, err
	}
	if !match {
		if deps.RecordFailure != nil {
			if err := deps.RecordFailure(ctx, principal); err != nil {
				return Principal{}, TokenPair{}, err
			}
		}
		return Principal{}, TokenPair{}, deps.Errors.InvalidCredentials
	}

	if !principal.Active {
		return Principal{}, TokenPair{}, deps.Errors.AccountInactive
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

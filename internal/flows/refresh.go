package flows

import "context"

// RefreshClaims is the flow-level view of a parsed refresh token.
type RefreshClaims struct {
	TokenID   string
	SubjectID string
	Kind      string
	ExpiresAt int64
}

// RefreshErrors are the sentinel errors a refresh can surface.
type RefreshErrors struct {
	EngineNotReady  error
	InvalidToken    error
	AccountInactive error
}

// RefreshDeps wires token parsing, revocation checks, and principal
// resolution for the renewal flow.
type RefreshDeps struct {
	// RevokePresented re-blacklists the presented refresh token after a
	// successful renewal. Nil disables rotation-revocation, which is the
	// default: the same refresh token may mint several pairs over its life.
	RevokePresented func(ctx context.Context, claims RefreshClaims) error

	ParseRefresh func(ctx context.Context) (RefreshClaims, error)
	IsRevoked    func(ctx context.Context, tokenID string) (bool, error)
	Resolve      func(ctx context.Context, claims RefreshClaims) (Principal, error)
	IssueTokens  func(ctx context.Context, principal Principal) (TokenPair, error)

	Errors RefreshErrors
}

// RunRefresh verifies the presented refresh token and mints a fresh pair for
// its still-active subject.
func RunRefresh(ctx context.Context, deps RefreshDeps) (Principal, TokenPair, error) {
	if deps.ParseRefresh == nil || deps.IsRevoked == nil || deps.Resolve == nil || deps.IssueTokens == nil {
		return Principal{}, TokenPair{}, deps.Errors.EngineNotReady
	}

	claims, err := deps.ParseRefresh(ctx)
	if err != nil {
		return Principal{}, TokenPair{}, deps.Errors.InvalidToken
	}

	revoked, err := deps.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return Principal{}, TokenPair{}, err
	}
	if revoked {
		return Principal{}, TokenPair{}, deps.Errors.InvalidToken
	}

	principal, err := deps.Resolve(ctx, claims)
	if err != nil {
		return Principal{}, TokenPair{}, err
	}
	if !principal.Active {
		return Principal{}, TokenPair{}, deps.Errors.AccountInactive
	}

	tokens, err := deps.IssueTokens(ctx, principal)
	if err != nil {
		return Principal{}, TokenPair{}, err
	}

	if deps.RevokePresented != nil {
		if err := deps.RevokePresented(ctx, claims); err != nil {
			return Principal{}, TokenPair{}, err
		}
	}

	return principal, tokens, nil
}

package pulseauth

import (
	"context"
	"errors"

	"github.com/blupulse/pulseauth/internal/audit"
	"github.com/blupulse/pulseauth/internal/flows"
	"github.com/blupulse/pulseauth/internal/metrics"
	"github.com/blupulse/pulseauth/internal/revoke"
	"github.com/blupulse/pulseauth/jwt"
)

// Refresh exchanges a still-valid refresh token for a fresh pair. The
// presented token stays usable afterwards unless RevokeOnRefresh is set.
// Structural, signature, expiry, and revocation failures all collapse to
// ErrTokenInvalid.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	deps := flows.RefreshDeps{
		ParseRefresh: func(ctx context.Context) (flows.RefreshClaims, error) {
			claims, err := e.tokens.Parse(refreshToken, jwt.KindRefresh)
			if err != nil {
				return flows.RefreshClaims{}, err
			}
			return flows.RefreshClaims{
				TokenID:   claims.ID,
				SubjectID: claims.Subject,
				Kind:      claims.SubjectKind,
				ExpiresAt: claims.ExpiresAt.Unix(),
			}, nil
		},
		IsRevoked: func(ctx context.Context, tokenID string) (bool, error) {
			revoked, err := e.revocations.IsRevoked(ctx, tokenID)
			if err != nil {
				return false, wrapUnavailable(err)
			}
			return revoked, nil
		},
		Resolve: func(ctx context.Context, claims flows.RefreshClaims) (flows.Principal, error) {
			principal, err := e.resolveSubject(ctx, claims.SubjectID, PrincipalKind(claims.Kind))
			if errors.Is(err, ErrPrincipalNotFound) {
				// A deleted subject is indistinguishable from a bad token.
				return flows.Principal{}, ErrTokenInvalid
			}
			return principal, err
		},
		IssueTokens: e.issueTokens,
		Errors: flows.RefreshErrors{
			EngineNotReady:  ErrEngineNotReady,
			InvalidToken:    ErrTokenInvalid,
			AccountInactive: ErrAccountInactive,
		},
	}
	if e.config.Token.RevokeOnRefresh {
		deps.RevokePresented = func(ctx context.Context, claims flows.RefreshClaims) error {
			return e.revokeID(ctx, claims.TokenID, claims.SubjectID, jwt.KindRefresh, claims.ExpiresAt)
		}
	}

	principal, tokens, err := flows.RunRefresh(ctx, deps)
	if err != nil {
		e.metrics.Inc(metrics.MetricRefreshFailure)
		e.emitAudit(ctx, audit.Event{
			EventType: "token.refresh",
			Error:     err.Error(),
		})
		return nil, err
	}

	e.metrics.Inc(metrics.MetricRefreshSuccess)
	e.emitAudit(ctx, audit.Event{
		EventType:   "token.refresh",
		SubjectID:   principal.SubjectID,
		SubjectKind: principal.Kind,
		Success:     true,
	})

	return &TokenPair{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}, nil
}

// Validate checks a token's structure, signature, expiry, kind, and
// revocation status. Every verification failure collapses to ErrTokenInvalid
// so callers cannot probe which check failed; the audit trail keeps the
// specific kind. Backend failures surface as ErrStoreUnavailable instead,
// since retrying those can succeed.
func (e *Engine) Validate(ctx context.Context, token string, expect jwt.TokenKind) (*jwt.Claims, error) {
	claims, err := e.tokens.Parse(token, expect)
	if err != nil {
		return nil, e.observeValidateFailure(ctx, err)
	}

	revoked, err := e.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, wrapUnavailable(err)
	}
	if revoked {
		return nil, e.observeValidateFailure(ctx, errors.New("token revoked"))
	}

	e.metrics.Inc(metrics.MetricValidateSuccess)
	return claims, nil
}

// Logout revokes the access token, and the associated refresh token when one
// is supplied. Pass an empty refresh token for access-only logout.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := e.Revoke(ctx, accessToken); err != nil {
		return err
	}
	if refreshToken != "" {
		return e.Revoke(ctx, refreshToken)
	}
	return nil
}

// Revoke blacklists the token's identifier until the token's own expiry, so
// the entry garbage-collects itself once the token would have died anyway.
// Revoking twice is not an error. Accepts either kind.
func (e *Engine) Revoke(ctx context.Context, token string) error {
	claims, kind, err := e.parseEitherKind(token)
	if err != nil {
		return ErrTokenInvalid
	}
	return e.revokeID(ctx, claims.ID, claims.Subject, kind, claims.ExpiresAt.Unix())
}

func (e *Engine) revokeID(ctx context.Context, tokenID, subjectID string, kind jwt.TokenKind, expiresAtUnix int64) error {
	entry := revoke.Entry{
		SubjectID: subjectID,
		TokenKind: string(kind),
		ExpiresAt: unixTime(expiresAtUnix),
	}
	if err := e.revocations.Revoke(ctx, tokenID, entry); err != nil {
		return wrapUnavailable(err)
	}

	e.metrics.Inc(metrics.MetricTokenRevoked)
	e.emitAudit(ctx, audit.Event{
		EventType: "token.revoke",
		SubjectID: subjectID,
		Success:   true,
		Metadata:  map[string]string{"token_kind": string(kind)},
	})
	return nil
}

func (e *Engine) parseEitherKind(token string) (*jwt.Claims, jwt.TokenKind, error) {
	claims, err := e.tokens.Parse(token, jwt.KindAccess)
	if err == nil {
		return claims, jwt.KindAccess, nil
	}
	if errors.Is(err, jwt.ErrKindMismatch) {
		claims, err = e.tokens.Parse(token, jwt.KindRefresh)
		if err == nil {
			return claims, jwt.KindRefresh, nil
		}
	}
	return nil, "", err
}

func (e *Engine) issueTokens(_ context.Context, principal flows.Principal) (flows.TokenPair, error) {
	pair, err := e.tokens.IssuePair(principal.SubjectID, principal.Kind, jwt.Extra{
		OrgID: principal.OrgID,
		Role:  principal.Role,
	})
	if err != nil {
		return flows.TokenPair{}, err
	}
	return flows.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(e.config.Token.AccessTTL.Seconds()),
	}, nil
}

func (e *Engine) observeValidateFailure(ctx context.Context, cause error) error {
	e.metrics.Inc(metrics.MetricValidateFailure)
	e.emitAudit(ctx, audit.Event{
		EventType: "token.validate",
		Error:     cause.Error(),
	})
	return ErrTokenInvalid
}

package pulseauth

import (
	"context"

	"github.com/blupulse/pulseauth/contact"
	"github.com/blupulse/pulseauth/internal/flows"
)

// Resolve looks up a principal by subject id and kind. Used by token renewal
// and by downstream authorization checks.
func (e *Engine) Resolve(ctx context.Context, subjectID string, kind PrincipalKind) (*PrincipalRef, error) {
	principal, err := e.resolveSubject(ctx, subjectID, kind)
	if err != nil {
		return nil, err
	}
	ref := principalRef(principal)
	return &ref, nil
}

// resolveContact resolves a canonical contact value to a principal. End
// users win collisions; the order is fixed everywhere.
func (e *Engine) resolveContact(ctx context.Context, canonical string, channel contact.Channel) (flows.Principal, error) {
	return flows.Resolve(ctx, flows.ResolveDeps{
		LookupEndUser: func(ctx context.Context) (flows.Principal, bool, error) {
			record, err := e.endUsers.GetByContact(ctx, canonical, channel)
			if err != nil {
				return flows.Principal{}, false, wrapUnavailable(err)
			}
			if record == nil {
				return flows.Principal{}, false, nil
			}
			return endUserPrincipal(record), true, nil
		},
		LookupOperator: func(ctx context.Context) (flows.Principal, bool, error) {
			if e.operators == nil {
				return flows.Principal{}, false, nil
			}
			record, err := e.operators.GetByContact(ctx, canonical, channel)
			if err != nil {
				return flows.Principal{}, false, wrapUnavailable(err)
			}
			if record == nil {
				return flows.Principal{}, false, nil
			}
			return operatorPrincipal(record), true, nil
		},
		ErrEngineNotReady: ErrEngineNotReady,
		ErrNotFound:       ErrPrincipalNotFound,
	})
}

// resolveSubject resolves a subject id within one kind. Unlike contact
// resolution there is no cross-kind fallback: the kind tag travels inside the
// token, so an id is only ever looked up in its own store.
func (e *Engine) resolveSubject(ctx context.Context, subjectID string, kind PrincipalKind) (flows.Principal, error) {
	switch kind {
	case KindEndUser:
		record, err := e.endUsers.GetByID(ctx, subjectID)
		if err != nil {
			return flows.Principal{}, wrapUnavailable(err)
		}
		if record == nil {
			return flows.Principal{}, ErrPrincipalNotFound
		}
		return endUserPrincipal(record), nil
	case KindOperatorMember:
		if e.operators == nil {
			return flows.Principal{}, ErrPrincipalNotFound
		}
		record, err := e.operators.GetByID(ctx, subjectID)
		if err != nil {
			return flows.Principal{}, wrapUnavailable(err)
		}
		if record == nil {
			return flows.Principal{}, ErrPrincipalNotFound
		}
		return operatorPrincipal(record), nil
	default:
		return flows.Principal{}, ErrPrincipalNotFound
	}
}

// markContactVerified flags the channel on the principal's record. Proving
// control of the contact is what verification means here.
func (e *Engine) markContactVerified(ctx context.Context, principal flows.Principal, channel contact.Channel) error {
	switch PrincipalKind(principal.Kind) {
	case KindEndUser:
		if err := e.endUsers.MarkContactVerified(ctx, principal.SubjectID, channel); err != nil {
			return wrapUnavailable(err)
		}
	case KindOperatorMember:
		if e.operators == nil {
			return ErrPrincipalNotFound
		}
		if err := e.operators.MarkContactVerified(ctx, principal.SubjectID, channel); err != nil {
			return wrapUnavailable(err)
		}
	}
	return nil
}

func (e *Engine) updatePasswordHash(ctx context.Context, principal flows.Principal, hash string) error {
	switch PrincipalKind(principal.Kind) {
	case KindEndUser:
		if err := e.endUsers.UpdatePasswordHash(ctx, principal.SubjectID, hash); err != nil {
			return wrapUnavailable(err)
		}
	case KindOperatorMember:
		if e.operators == nil {
			return ErrPrincipalNotFound
		}
		if err := e.operators.UpdatePasswordHash(ctx, principal.SubjectID, hash); err != nil {
			return wrapUnavailable(err)
		}
	}
	return nil
}

func endUserPrincipal(record *EndUserRecord) flows.Principal {
	return flows.Principal{
		SubjectID:    record.ID,
		Kind:         string(KindEndUser),
		Active:       record.Active,
		PasswordHash: record.PasswordHash,
		FailedLogins: record.FailedLogins,
	}
}

func operatorPrincipal(record *OperatorMemberRecord) flows.Principal {
	return flows.Principal{
		SubjectID:    record.ID,
		Kind:         string(KindOperatorMember),
		OrgID:        record.OrgID,
		Role:         string(record.Role),
		Active:       record.Active,
		PasswordHash: record.PasswordHash,
	}
}

func principalRef(principal flows.Principal) PrincipalRef {
	return PrincipalRef{
		SubjectID: principal.SubjectID,
		Kind:      PrincipalKind(principal.Kind),
		OrgID:     principal.OrgID,
		Role:      OperatorRole(principal.Role),
		Active:    principal.Active,
	}
}

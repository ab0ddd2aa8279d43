package flows

import "context"

// Principal is the flow-level view of a resolved identity. It carries only
// what the authentication flows branch on.
type Principal struct {
	SubjectID    string
	Kind         string
	OrgID        string
	Role         string
	Active       bool
	PasswordHash string
	FailedLogins int
}

// Lookup fetches a principal of one kind. The bool reports whether a record
// exists; an error means the backing store failed.
type Lookup func(ctx context.Context) (Principal, bool, error)

// ResolveDeps wires the two principal kinds for contact or subject
// resolution.
type ResolveDeps struct {
	LookupEndUser  Lookup
	LookupOperator Lookup

	ErrEngineNotReady error
	ErrNotFound       error
}

// Resolve tries the end-user store first, then the operator store. The order
// is fixed: when a contact or subject id matches both kinds, the end user
// wins.
func Resolve(ctx context.Context, deps ResolveDeps) (Principal, error) {
	if deps.LookupEndUser == nil || deps.LookupOperator == nil {
		return Principal{}, deps.ErrEngineNotReady
	}

	principal, found, err := deps.LookupEndUser(ctx)
	if err != nil {
		return Principal{}, err
	}
	if found {
		return principal, nil
	}

	principal, found, err = deps.LookupOperator(ctx)
	if err != nil {
		return Principal{}, err
	}
	if found {
		return principal, nil
	}

	return Principal{}, deps.ErrNotFound
}

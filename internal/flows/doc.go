// Package flows contains the orchestration logic for authentication flows,
// decoupled from the engine through explicit dependency structs.
//
// Each flow is a pure function over its Deps: stores, token minting, and
// bookkeeping arrive as funcs, sentinel errors are injected, and the flow
// never touches engine state directly. This keeps the branching logic (lock
// ceilings, active checks, principal resolution order) testable without
// Redis or a signing key.
package flows

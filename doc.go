// Package pulseauth is an authentication core for systems with two principal
// kinds (end users and operator-organization members) sharing one login
// surface: password login, OTP login over email or messaging, and signed
// token pairs with revocation, all gated by per-action rate limits.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// pulseauth is the public surface. It exposes [Engine], [Builder], [Config],
// value types, and the sentinel error taxonomy. Flow orchestration, the
// Redis-backed challenge/rate/revocation stores, audit dispatch, and metric
// counters live under internal/ and are never exported. The reusable
// primitives jwt, password, and contact are public sub-packages.
//
// Persistence of principal records and outbound message delivery are
// caller-supplied ([EndUserProvider], [OperatorProvider], [MessageSender]);
// the engine owns only the short-lived state in Redis.
//
// # Correctness contract
//
// The two operations with hard atomicity requirements run as single Redis
// Lua scripts: OTP verification consumes a challenge exactly once under
// concurrent duplicates, and rate limiting admits exactly the configured
// budget per window regardless of call interleaving. Token issuance is local
// computation; verification adds one revocation lookup.
package pulseauth

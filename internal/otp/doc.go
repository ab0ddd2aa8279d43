// Package otp implements the Redis-backed challenge store.
//
// One key exists per (contact, channel, purpose) tuple; issuing a new
// challenge overwrites the previous one in a single SET, which is what keeps
// the at-most-one-unconsumed invariant. Records are binary encoded:
//
//	version(1) | attempts(2 BE) | expiresAt(8 BE) | codeLen(1) | code
//
// # Consumption semantics
//
// Consume runs a single Lua script so GET→validate→DEL/SET is one atomic
// step on the Redis server. Exactly one of N concurrent callers with the
// correct code observes the record; the rest see not_found. Wrong codes
// increment the attempt counter in place; a saturated counter leaves the
// record behind (until its TTL) so later attempts keep reporting exhausted
// instead of not_found.
//
// # What this package must NOT do
//
//   - Dispatch codes or apply rate limits (engine concerns).
//   - Be imported outside the pulseauth module.
package otp

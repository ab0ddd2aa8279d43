// Package revoke implements the token revocation store.
//
// Revoking a token inserts its jti with a TTL equal to the token's own
// remaining lifetime, so entries garbage-collect themselves the moment the
// token would have expired anyway. Inserts are idempotent; a revoked jti
// stays revoked for as long as the token could still be presented.
//
// # What this package must NOT do
//
//   - Parse or validate tokens — it deals in jtis only.
//   - Be imported outside the pulseauth module.
package revoke

// Package jwt issues and parses the signed token pairs used by the engine.
//
// Every token carries subject id, subject kind, token kind (access or
// refresh), a unique token id (jti, the unit of revocation), issued-at and
// expiry. Signing uses a process-wide secret: HS256 by default, ed25519
// when key material is provided.
//
// # Architecture boundaries
//
// The [Manager] is pure computation plus a clock read — no persistence.
// Revocation lookups happen in the engine, not here.
//
// # What this package must NOT do
//
//   - Accept a refresh token where an access token is expected (kind is
//     validated structurally in [Manager.Parse]).
//   - Import any other pulseauth package.
package jwt

// Package password implements slow, salted password hashing with Argon2id.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification is constant-time over the derived key. The [Hasher] can detect
// hashes produced with weaker parameters so callers may re-hash on the next
// successful login.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other pulseauth package.
package password

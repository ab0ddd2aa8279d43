// Package rate enforces per-(identifier, action) fixed-window attempt
// budgets on Redis counters.
//
// # Window semantics
//
// Fixed windows: a single Lua script performs INCR, arms the window TTL on
// the first hit, and reads PTTL for the retry-after hint when the budget is
// exceeded. Because the whole check-and-record step runs server-side, two
// concurrent callers can never both take the last slot. Window expiry and
// reset live here and nowhere else. Key layout: <prefix>:<action>:<identifier>.
//
// # What this package must NOT do
//
//   - Know which actions exist — policies are injected by the engine config.
//   - Be imported outside the pulseauth module.
package rate

// Package audit provides the engine's internal event trail.
//
// The public API collapses most authentication failures into generic errors
// to avoid enumeration and oracle leaks; audit events are where the specific
// failure kind survives for operators. Events are dispatched asynchronously
// to a caller-supplied [Sink] so slow consumers never block the hot path.
//
// # What this package must NOT do
//
//   - Carry plaintext codes, passwords, or token strings in events.
//   - Be imported outside the pulseauth module (the root package re-exports
//     the sink types).
package audit

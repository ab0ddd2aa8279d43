// Package metrics implements the engine's in-process counters.
//
// Counters are lock-free atomics; Snapshot returns a deep copy so exporters
// never observe torn state. When disabled, every operation is a no-op with
// zero allocation. Export bridges (OTel) live outside internal/.
package metrics

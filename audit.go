package pulseauth

import (
	"io"

	"github.com/blupulse/pulseauth/internal/audit"
)

// AuditEvent is the record emitted for every authentication outcome. Events
// retain the specific failure kind that the public error taxonomy collapses,
// so operators can distinguish "expired" from "revoked" without the API
// becoming an oracle.
type AuditEvent = audit.Event

// AuditSink receives emitted audit events. Implementations must be safe for
// use from the single dispatcher goroutine and should return quickly;
// slow sinks cause event shedding when DropIfFull is set.
type AuditSink = audit.Sink

// NoOpSink drops audit events.
type NoOpSink = audit.NoOpSink

// ChannelSink writes audit events into a buffered channel. Useful in tests
// and for custom fan-out.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per line to an io.Writer.
type JSONWriterSink = audit.JSONWriterSink

// NewChannelSink creates a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a line-oriented JSON sink over w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

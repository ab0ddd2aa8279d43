package metrics

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	MetricOTPIssued MetricID = iota
	MetricOTPDispatchFailed
	MetricOTPResent
	MetricOTPVerified
	MetricOTPMismatch
	MetricOTPExpired
	MetricOTPExhausted
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginLocked
	MetricLoginInactive
	MetricOTPLoginSuccess
	MetricPasswordUpdated
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricValidateSuccess
	MetricValidateFailure
	MetricTokenRevoked
	MetricRateLimitHit

	// MetricIDCount is the number of defined counters.
	MetricIDCount
)

// Config controls metric collection.
type Config struct {
	Enabled bool
}

// Metrics holds atomic counters. The zero value is unusable; construct with
// New.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time deep copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// New creates a Metrics instance. When cfg.Enabled is false all operations
// are no-ops.
func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the counter by one.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot copies every counter value.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}

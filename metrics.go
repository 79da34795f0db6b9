package tokengate

import "sync/atomic"

// MetricID identifies one outcome counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts completed logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected credential attempts.
	MetricLoginFailure
	// MetricRegisterSuccess counts completed registrations.
	MetricRegisterSuccess
	// MetricRegisterConflict counts duplicate-email registrations.
	MetricRegisterConflict
	// MetricRegisterFailure counts registrations rejected for other reasons.
	MetricRegisterFailure
	// MetricRefreshSuccess counts completed rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected rotations.
	MetricRefreshFailure
	// MetricRefreshReuseDetected counts rotations of already-consumed tokens.
	MetricRefreshReuseDetected
	// MetricStoreUnavailable counts operations abandoned on store outage.
	MetricStoreUnavailable
	// MetricRequestAuthenticated counts requests that resolved an identity.
	MetricRequestAuthenticated
	// MetricRequestRejected counts refresh-kind tokens rejected on
	// protected routes.
	MetricRequestRejected

	metricCount
)

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Metrics holds lock-free outcome counters. A disabled Metrics drops all
// increments.
type Metrics struct {
	enabled  bool
	counters [metricCount]atomic.Uint64
}

func newMetrics(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

// Inc adds one to the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot copies every counter. Safe to call concurrently with Inc.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricCount)}
	if m == nil {
		return snap
	}

	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}

	return snap
}

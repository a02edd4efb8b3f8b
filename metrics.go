package leapjoin

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    joinCounter    prometheus.Counter
//	    drainHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordInit(k int, duration time.Duration, err error) {
//	    p.joinCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordInit is called after each join construction, including the
	// initial alignment pass. k is the number of inputs, err is nil if
	// construction succeeded.
	RecordInit(k int, duration time.Duration, err error)

	// RecordExhaust is called once per join, the moment it exhausts.
	// aligned is the number of alignments the join achieved over its
	// lifetime and duration the time since construction. Joins abandoned
	// before exhaustion are never recorded.
	RecordExhaust(k int, aligned int64, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInit(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordExhaust(int, int64, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InitCount         atomic.Int64
	InitErrors        atomic.Int64
	InitTotalNanos    atomic.Int64
	ExhaustCount      atomic.Int64
	AlignedTotal      atomic.Int64
	ExhaustTotalNanos atomic.Int64
}

// RecordInit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInit(k int, duration time.Duration, err error) {
	b.InitCount.Add(1)
	b.InitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InitErrors.Add(1)
	}
}

// RecordExhaust implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExhaust(k int, aligned int64, duration time.Duration) {
	b.ExhaustCount.Add(1)
	b.AlignedTotal.Add(aligned)
	b.ExhaustTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InitCount:       b.InitCount.Load(),
		InitErrors:      b.InitErrors.Load(),
		InitAvgNanos:    b.getAvgInitNanos(),
		ExhaustCount:    b.ExhaustCount.Load(),
		AlignedTotal:    b.AlignedTotal.Load(),
		ExhaustAvgNanos: b.getAvgExhaustNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgInitNanos() int64 {
	count := b.InitCount.Load()
	if count == 0 {
		return 0
	}
	return b.InitTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgExhaustNanos() int64 {
	count := b.ExhaustCount.Load()
	if count == 0 {
		return 0
	}
	return b.ExhaustTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InitCount       int64
	InitErrors      int64
	InitAvgNanos    int64
	ExhaustCount    int64
	AlignedTotal    int64
	ExhaustAvgNanos int64
}

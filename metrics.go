package knngraph

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    insertCounter   prometheus.Counter
//	    searchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordInsert(duration time.Duration, err error) {
//	    p.insertCounter.Inc()
//	}
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	// duration is the total time taken, err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordBatchInsert is called after each batch insert operation.
	// count is the number of items attempted, failed is the number that
	// were not inserted, duration is the total time taken.
	RecordBatchInsert(count, failed int, duration time.Duration)

	// RecordSearch is called after each search operation.
	// k is the number of neighbors requested, duration is the time taken,
	// err is nil if successful.
	RecordSearch(k int, duration time.Duration, err error)

	// RecordTrace is called once a traced search has been fully consumed
	// or abandoned by the caller.
	RecordTrace(k, steps int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)         {}
func (NoopMetricsCollector) RecordBatchInsert(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordTrace(int, int, time.Duration)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount       atomic.Int64
	InsertErrors      atomic.Int64
	InsertTotalNanos  atomic.Int64
	BatchInsertCount  atomic.Int64
	BatchInsertItems  atomic.Int64
	BatchInsertFailed atomic.Int64
	BatchInsertNanos  atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchTotalNanos  atomic.Int64
	TraceCount        atomic.Int64
	TraceSteps        atomic.Int64
	TraceTotalK       atomic.Int64
	TraceTotalNanos   atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordBatchInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchInsert(count, failed int, duration time.Duration) {
	b.BatchInsertCount.Add(1)
	b.BatchInsertItems.Add(int64(count))
	b.BatchInsertFailed.Add(int64(failed))
	b.BatchInsertNanos.Add(duration.Nanoseconds())
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(k int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordTrace implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrace(k, steps int, duration time.Duration) {
	b.TraceCount.Add(1)
	b.TraceSteps.Add(int64(steps))
	b.TraceTotalK.Add(int64(k))
	b.TraceTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:         b.InsertCount.Load(),
		InsertErrors:        b.InsertErrors.Load(),
		InsertAvgNanos:      avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		BatchInsertCount:    b.BatchInsertCount.Load(),
		BatchInsertItems:    b.BatchInsertItems.Load(),
		BatchInsertFailed:   b.BatchInsertFailed.Load(),
		BatchInsertAvgNanos: avg(b.BatchInsertNanos.Load(), b.BatchInsertCount.Load()),
		SearchCount:         b.SearchCount.Load(),
		SearchErrors:        b.SearchErrors.Load(),
		SearchAvgNanos:      avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		TraceCount:          b.TraceCount.Load(),
		TraceSteps:          b.TraceSteps.Load(),
		TraceAvgK:           avg(b.TraceTotalK.Load(), b.TraceCount.Load()),
		TraceAvgNanos:       avg(b.TraceTotalNanos.Load(), b.TraceCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount         int64
	InsertErrors        int64
	InsertAvgNanos      int64
	BatchInsertCount    int64
	BatchInsertItems    int64
	BatchInsertFailed   int64
	BatchInsertAvgNanos int64
	SearchCount         int64
	SearchErrors        int64
	SearchAvgNanos      int64
	TraceCount          int64
	TraceSteps          int64
	TraceAvgK           int64
	TraceAvgNanos       int64
}

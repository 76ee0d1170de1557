package fins

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// OperationStats is a snapshot of the collected metrics for one operation.
type OperationStats struct {
	Count       int64
	Errors      int64
	AvgDuration time.Duration
}

type opCounters struct {
	count   atomic.Int64
	errors  atomic.Int64
	totalNs atomic.Int64
}

// MetricsCollector collects per-operation call counts, error counts and
// durations. Safe for concurrent use; counters are updated lock-free.
//
// Example:
//
//	metrics := fins.NewMetricsCollector()
//	client.SetInterceptor(metrics.Interceptor())
//
//	stats := metrics.Stats(fins.OpReadWords)
//	log.Printf("ReadWords: %d calls, %d errors, avg %v", stats.Count, stats.Errors, stats.AvgDuration)
type MetricsCollector struct {
	ops *xsync.MapOf[OperationType, *opCounters]
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		ops: xsync.NewMapOf[OperationType, *opCounters](),
	}
}

// Interceptor returns an interceptor that records metrics.
func (m *MetricsCollector) Interceptor() Interceptor {
	return func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		start := time.Now()

		result, err := invoker(ctx)

		counters, _ := m.ops.LoadOrCompute(info.Operation, func() *opCounters {
			return &opCounters{}
		})
		counters.count.Add(1)
		counters.totalNs.Add(int64(time.Since(start)))
		if err != nil {
			counters.errors.Add(1)
		}

		return result, err
	}
}

// Stats returns the collected statistics for one operation.
func (m *MetricsCollector) Stats(op OperationType) OperationStats {
	counters, ok := m.ops.Load(op)
	if !ok {
		return OperationStats{}
	}
	return snapshot(counters)
}

// AllStats returns the collected statistics for every operation seen so
// far.
func (m *MetricsCollector) AllStats() map[OperationType]OperationStats {
	stats := make(map[OperationType]OperationStats)
	m.ops.Range(func(op OperationType, counters *opCounters) bool {
		stats[op] = snapshot(counters)
		return true
	})
	return stats
}

// Reset clears all collected metrics.
func (m *MetricsCollector) Reset() {
	m.ops.Clear()
}

func snapshot(c *opCounters) OperationStats {
	s := OperationStats{
		Count:  c.count.Load(),
		Errors: c.errors.Load(),
	}
	if s.Count > 0 {
		s.AvgDuration = time.Duration(c.totalNs.Load() / s.Count)
	}
	return s
}

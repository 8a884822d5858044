package helper

import (
	"sync"
	"time"
)

// CounterIncrement is one captured IncrementCounter call.
type CounterIncrement struct {
	Metric string
	Labels map[string]string
}

// DurationRecord is one captured RecordDuration call.
type DurationRecord struct {
	Metric   string
	Duration time.Duration
	Labels   map[string]string
}

// MetricsSpy is a circulation.MetricsCollector implementation that captures
// metric calls for assertions in tests.
type MetricsSpy struct {
	mu        sync.Mutex
	counters  []CounterIncrement
	durations []DurationRecord
}

// NewMetricsSpy creates a new MetricsSpy.
func NewMetricsSpy() *MetricsSpy {
	return &MetricsSpy{}
}

// RecordDuration captures a duration record.
func (s *MetricsSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durations = append(s.durations, DurationRecord{Metric: metric, Duration: duration, Labels: labels})
}

// IncrementCounter captures a counter increment.
func (s *MetricsSpy) IncrementCounter(metric string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = append(s.counters, CounterIncrement{Metric: metric, Labels: labels})
}

// RecordValue is a no-op capture; the circulation packages do not record raw
// values today.
func (s *MetricsSpy) RecordValue(_ string, _ float64, _ map[string]string) {}

// CounterIncrements returns a copy of all captured counter increments.
func (s *MetricsSpy) CounterIncrements() []CounterIncrement {
	s.mu.Lock()
	defer s.mu.Unlock()

	counters := make([]CounterIncrement, len(s.counters))
	copy(counters, s.counters)

	return counters
}

// CounterTotal returns how often the given metric was incremented.
func (s *MetricsSpy) CounterTotal(metric string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, counter := range s.counters {
		if counter.Metric == metric {
			total++
		}
	}

	return total
}

// DurationRecords returns a copy of all captured duration records.
func (s *MetricsSpy) DurationRecords() []DurationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	durations := make([]DurationRecord, len(s.durations))
	copy(durations, s.durations)

	return durations
}

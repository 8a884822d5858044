package postgresengine

import (
	"github.com/shelfwise/circulation-go/circulation"
)

// Option defines a functional option for configuring RecordStore.
type Option func(*RecordStore) error

// WithCatalogTableName sets the table the catalog records are read from.
func WithCatalogTableName(tableName string) Option {
	return func(s *RecordStore) error {
		if tableName == "" {
			return circulation.ErrEmptyTableName
		}

		s.catalogTableName = tableName

		return nil
	}
}

// WithLoansTableName sets the table the loan records are read from.
func WithLoansTableName(tableName string) Option {
	return func(s *RecordStore) error {
		if tableName == "" {
			return circulation.ErrEmptyTableName
		}

		s.loansTableName = tableName

		return nil
	}
}

// WithPoliciesTableName sets the table the per-account fee policies are read from.
func WithPoliciesTableName(tableName string) Option {
	return func(s *RecordStore) error {
		if tableName == "" {
			return circulation.ErrEmptyTableName
		}

		s.policiesTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the RecordStore.
// The logger will receive messages at different levels based on the logger's
// configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: record counts and durations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger circulation.Logger) Option {
	return func(s *RecordStore) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the context-aware logger for the RecordStore.
// When both loggers are configured, the contextual one wins, enabling
// automatic trace/span correlation.
func WithContextualLogger(logger circulation.ContextualLogger) Option {
	return func(s *RecordStore) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the RecordStore. It receives
// query durations per operation and error counters.
func WithMetrics(collector circulation.MetricsCollector) Option {
	return func(s *RecordStore) error {
		s.metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the RecordStore. It receives a
// span per store round trip, tagged with the operation name.
func WithTracing(collector circulation.TracingCollector) Option {
	return func(s *RecordStore) error {
		s.tracing = collector
		return nil
	}
}

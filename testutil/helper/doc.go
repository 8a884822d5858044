// Package helper provides testing spies for the observability interfaces:
// log and contextual-log spies capturing messages per level, a metrics
// collector spy capturing counter increments and recorded durations, and a
// tracing spy capturing span lifecycles.
package helper

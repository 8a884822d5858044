// Package fixtures provides an in-memory circulation.RecordStore and record
// builders for testing the evaluators without a database.
//
// The MemoryStore evaluates filters with the same semantics the PostgreSQL
// engine compiles to SQL: account scoping, equality and case-insensitive
// substring predicates, soft-delete exclusion, and result limiting. Query
// failures can be injected per collection to test degraded behavior.
package fixtures

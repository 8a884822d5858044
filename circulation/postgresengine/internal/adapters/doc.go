// Package adapters provides database client adapters for the PostgreSQL
// record store.
//
// The adapters normalize pgx pools, sql.DB, and sqlx.DB behind the DBAdapter
// interface so the query engine stays client-agnostic. Only read operations
// are exposed; the record store issues no writes.
package adapters

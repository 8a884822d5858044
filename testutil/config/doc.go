// Package config provides database connection configuration for the
// PostgreSQL record store integration tests, one constructor per supported
// client (pgx pool, sql.DB, sqlx.DB).
package config

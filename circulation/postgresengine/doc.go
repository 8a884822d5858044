// Package postgresengine provides a PostgreSQL implementation of the
// circulation.RecordStore interface.
//
// It compiles circulation.Filter values into SQL with goqu and supports
// multiple database adapters (pgx, sql.DB, sqlx) behind a private adapter
// interface. The engine only ever reads: catalog queries, loan queries,
// count-only loan queries, and per-account fee-policy loading.
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewRecordStoreFromPGXPool(db)
//
//	// With custom table names and operational logging
//	store, _ := postgresengine.NewRecordStoreFromPGXPool(
//		db,
//		postgresengine.WithCatalogTableName("catalog_books"),
//		postgresengine.WithLoansTableName("catalog_loans"),
//		postgresengine.WithLogger(logger),
//	)
package postgresengine

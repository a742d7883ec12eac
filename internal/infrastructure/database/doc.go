// Package database provides SQLite connection management for dacbroker.
//
// It wraps database/sql with:
//   - Connection configuration (WAL mode, busy timeout, foreign keys)
//   - Embedded schema migrations (see the migrations package)
//   - Health checks and lifecycle management
//
// The property store is the only consumer; SQLite is configured for a
// single writer with WAL readers, which matches its access pattern.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: "./data/dacbroker.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database

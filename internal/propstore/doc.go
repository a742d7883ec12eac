// Package propstore provides the system-wide persistent property store.
//
// The property store is a key-value cache of canonical feature values.
// Keys follow the "persist." naming convention shared with other system
// components and must not change once published. Values survive process
// restarts; on startup the dac controller reads them back and pushes them
// into the hardware control files, making the store the source of truth
// for feature state.
//
// The production implementation (SQLiteStore) keeps properties in a single
// SQLite table. The Store interface exists so the controller can be tested
// against an in-memory map.
//
// Usage:
//
//	store := propstore.NewSQLiteStore(db.DB)
//	vol := propstore.GetInt32(ctx, store, "persist.vendor.lge.dac.avc.volume", 0)
package propstore

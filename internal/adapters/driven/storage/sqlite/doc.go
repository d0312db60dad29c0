// Package sqlite provides the persistent SQLite-based implementation of the
// cache store port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Cache entries are split
// across three tables: query metadata, content-addressed documents keyed by
// fingerprint, and an ordered link table joining the two. Upserts merge new
// documents into an entry without disturbing the stored order of the ones
// already present.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.quarry/data/cache.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite

// Package sqlite provides a unified SQLite-based implementation of the
// metadata store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It implements every store
// interface through a single database connection:
//
//   - DocumentStore: document records and dedup-by-hash lookup
//   - MiniDocStore: page-range parse units
//   - ChunkStore: immutable chunk rows
//   - PageStore: per-page OCR text
//   - TableStore: extracted table blocks
//   - ArtifactStore: date mentions, timeline events, sensitive matches
//   - SettingsStore: runtime operator settings
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory as .up.sql files.
//
// # Transactions
//
// RunInTx wraps a database/sql transaction and hands the callback a Store
// view bound to it. Everything written through that view becomes visible to
// other connections atomically at commit, which is what lets the pipeline
// enqueue follow-up jobs only for rows that are already durable.
//
// # Data Location
//
// By default, the database is stored at ~/.corpora/data/corpora.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite

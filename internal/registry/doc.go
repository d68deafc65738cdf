// Package registry persists the canonical matching entities in SQLite:
// households, quotes, sales, and manual review cases.
//
// The Store manages the database connection, schema initialization, stats
// and health queries. All domain mutations happen through Tx methods inside
// Store.WithTx, so every ingested row commits or rolls back as one unit.
// Busy/contention errors retry with bounded backoff; domain errors surface
// immediately.
//
// Treat this package as the single source of truth for entity semantics;
// when you add columns, update schema.sql and bump schemaVersion.
package registry

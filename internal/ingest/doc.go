// Package ingest turns raw lead, quote, and sale rows into registry
// records. Each row is processed in its own transaction under a per-entity
// lock, so batches can run concurrently while replays stay idempotent.
// Sales flow through a three-step resolver: exact policy-number match,
// scored surname-candidate search, then one-call close.
package ingest

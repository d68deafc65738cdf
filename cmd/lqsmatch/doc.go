// Package main hosts the lqsmatch CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into batch
// ingestion runs, review-case resolution, household inspection, database
// diagnostics, and configuration scaffolding. It centralizes configuration
// resolution, the single-writer batch lock, and structured logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main

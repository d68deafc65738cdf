// Package logging constructs the engine's slog loggers. It offers a
// human-oriented console handler and a machine-oriented JSON handler,
// attribute helpers shared across packages, and a no-op logger for tests.
package logging

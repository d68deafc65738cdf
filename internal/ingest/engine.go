package ingest

import (
	"log/slog"

	"lqsmatch/internal/config"
	"lqsmatch/internal/identity"
	"lqsmatch/internal/logging"
	"lqsmatch/internal/registry"
)

// Engine processes batches of lead, quote, and sale rows against the
// registry.
type Engine struct {
	store  *registry.Store
	cfg    *config.Config
	logger *slog.Logger
	locks  *keyLocker
}

// NewEngine creates an ingest engine. logger may be nil.
func NewEngine(store *registry.Store, cfg *config.Config, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "ingest"),
		locks:  newKeyLocker(),
	}
}

// surnameLockKey buckets sale rows by agency and normalized surname so the
// candidate search and its subsequent writes are serialized against other
// sales (and one-call-close creations) for the same family name.
func surnameLockKey(agencyID, lastName string) string {
	return "sale:" + agencyID + "|" + identity.NormalizeLastName(lastName)
}

// householdLockKey serializes lead and quote rows that resolve to the same
// household key.
func householdLockKey(agencyID, key string) string {
	return "household:" + agencyID + "|" + key
}

package ingest

import (
	"context"
	"strings"

	"lqsmatch/internal/identity"
	"lqsmatch/internal/registry"
)

// IngestLeads processes a batch of lead rows for one agency.
func (e *Engine) IngestLeads(ctx context.Context, agencyID string, rows []LeadRow) (*BatchReport, error) {
	return e.runBatch(ctx, agencyID, "leads", len(rows), func(ctx context.Context, i int) RowResult {
		return e.ingestLead(ctx, agencyID, i, rows[i])
	})
}

func (e *Engine) ingestLead(ctx context.Context, agencyID string, index int, row LeadRow) RowResult {
	if err := row.Validate(); err != nil {
		return invalidResult(index, err)
	}

	key := identity.HouseholdKey(row.LastName, row.FirstName, row.Zip)
	unlock := e.locks.Lock(householdLockKey(agencyID, key))
	defer unlock()

	var result RowResult
	err := e.store.WithTx(ctx, func(tx *registry.Tx) error {
		household, created, err := tx.UpsertFromLead(agencyID, registry.LeadContact{
			Key:          key,
			FirstName:    strings.TrimSpace(row.FirstName),
			LastName:     strings.TrimSpace(row.LastName),
			Zip:          strings.TrimSpace(row.Zip),
			Phone:        strings.TrimSpace(row.Phone),
			Email:        strings.TrimSpace(row.Email),
			Source:       strings.TrimSpace(row.Source),
			ReceivedDate: row.ReceivedDate.Time,
		})
		if err != nil {
			return err
		}
		result = RowResult{Index: index, HouseholdID: household.ID}
		if created {
			result.Status = StatusCreated
		} else {
			result.Status = StatusUpdated
		}
		return nil
	})
	if err != nil {
		return failedResult(index, err)
	}
	return result
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lqsmatch/internal/identity"
	"lqsmatch/internal/registry"
)

// IngestQuotes processes a batch of quote rows for one agency.
func (e *Engine) IngestQuotes(ctx context.Context, agencyID string, rows []QuoteRow) (*BatchReport, error) {
	return e.runBatch(ctx, agencyID, "quotes", len(rows), func(ctx context.Context, i int) RowResult {
		return e.ingestQuote(ctx, agencyID, i, rows[i])
	})
}

func (e *Engine) ingestQuote(ctx context.Context, agencyID string, index int, row QuoteRow) RowResult {
	if err := row.Validate(); err != nil {
		return invalidResult(index, err)
	}

	product := identity.NormalizeProductType(row.ProductType)
	subProducer := identity.SubProducerCode(row.SubProducerCode)
	policyNumber := strings.TrimSpace(row.IssuedPolicyNumber)
	key := identity.HouseholdKey(row.LastName, row.FirstName, row.Zip)

	unlock := e.locks.Lock(householdLockKey(agencyID, key))
	defer unlock()

	var result RowResult
	err := e.store.WithTx(ctx, func(tx *registry.Tx) error {
		result = RowResult{Index: index}

		household, _, err := tx.UpsertFromQuote(agencyID, registry.QuoteContact{
			Key:       key,
			FirstName: strings.TrimSpace(row.FirstName),
			LastName:  strings.TrimSpace(row.LastName),
			Zip:       strings.TrimSpace(row.Zip),
		}, row.ProductionDate.Time)
		if err != nil {
			return err
		}
		result.HouseholdID = household.ID

		existing, err := tx.FindQuoteByFingerprint(household.ID, product, row.ProductionDate.Time, row.Premium)
		if err != nil && !errors.Is(err, registry.ErrNotFound) {
			return err
		}

		if existing != nil {
			// Replayed quote row. The only field that may change is a
			// policy number arriving on a quote that had none.
			result.Status = StatusMatched
			result.Reason = ReasonReplay
			result.QuoteID = existing.ID
			if policyNumber == "" || existing.IssuedPolicyNumber == policyNumber {
				return nil
			}
			if existing.IssuedPolicyNumber != "" {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"quote %d already holds policy number %s; ignoring %s",
					existing.ID, existing.IssuedPolicyNumber, policyNumber))
				return nil
			}
			inUse, err := tx.PolicyNumberInUse(agencyID, policyNumber)
			if err != nil {
				return err
			}
			if inUse {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"policy number %s already issued to another quote; not recorded", policyNumber))
				return nil
			}
			return tx.SetQuotePolicyNumber(existing.ID, policyNumber)
		}

		quote := &registry.Quote{
			AgencyID:        agencyID,
			HouseholdID:     household.ID,
			ProductType:     product,
			SubProducerCode: subProducer,
			Premium:         row.Premium,
			ProductionDate:  row.ProductionDate.Time,
		}
		if policyNumber != "" {
			inUse, err := tx.PolicyNumberInUse(agencyID, policyNumber)
			if err != nil {
				return err
			}
			if inUse {
				// At most one quote per agency may hold a policy number.
				// The later claimant is stored without one.
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"policy number %s already issued to another quote; not recorded", policyNumber))
			} else {
				quote.IssuedPolicyNumber = policyNumber
			}
		}
		if err := tx.InsertQuote(quote); err != nil {
			return err
		}
		result.Status = StatusCreated
		result.QuoteID = quote.ID
		return nil
	})
	if err != nil {
		return failedResult(index, err)
	}
	return result
}

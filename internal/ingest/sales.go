package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lqsmatch/internal/identity"
	"lqsmatch/internal/match"
	"lqsmatch/internal/registry"
)

// IngestSales processes a batch of sale rows for one agency, resolving each
// row to a household through the three-step resolver.
func (e *Engine) IngestSales(ctx context.Context, agencyID string, rows []SaleRow) (*BatchReport, error) {
	return e.runBatch(ctx, agencyID, "sales", len(rows), func(ctx context.Context, i int) RowResult {
		return e.resolveSale(ctx, agencyID, i, rows[i])
	})
}

func (e *Engine) resolveSale(ctx context.Context, agencyID string, index int, row SaleRow) RowResult {
	if err := row.Validate(); err != nil {
		return invalidResult(index, err)
	}

	policyNumber := strings.TrimSpace(row.PolicyNumber)
	facts := match.SaleFacts{
		Product:     identity.NormalizeProductType(row.ProductType),
		SubProducer: identity.SubProducerCode(row.SubProducerCode),
		Premium:     row.Premium,
		IssuedDate:  row.IssuedDate.Time,
	}

	// Serialize against other sales and one-call-close creations for the
	// same surname so the candidate search cannot race a write. The
	// household key lock is taken second, always in this order, so a
	// one-call close cannot race a lead or quote row for the same person.
	unlock := e.locks.Lock(surnameLockKey(agencyID, row.LastName))
	defer unlock()
	saleKey := identity.HouseholdKey(row.LastName, row.FirstName, row.Zip)
	unlockKey := e.locks.Lock(householdLockKey(agencyID, saleKey))
	defer unlockKey()

	var result RowResult
	err := e.store.WithTx(ctx, func(tx *registry.Tx) error {
		result = RowResult{Index: index}

		existing, err := tx.FindSaleByPolicyNumber(agencyID, policyNumber)
		if err != nil && !errors.Is(err, registry.ErrNotFound) {
			return err
		}
		if existing != nil {
			return e.resolveReplayedSale(tx, agencyID, existing, row, facts, &result)
		}

		sale := &registry.Sale{
			AgencyID:        agencyID,
			PolicyNumber:    policyNumber,
			FirstName:       strings.TrimSpace(row.FirstName),
			LastName:        strings.TrimSpace(row.LastName),
			ProductType:     facts.Product,
			SubProducerCode: facts.SubProducer,
			Premium:         row.Premium,
			IssuedDate:      facts.IssuedDate,
		}

		// Step 1: a quote already carrying this policy number decides the
		// household outright.
		quote, err := tx.FindQuoteByPolicyNumber(agencyID, policyNumber)
		if err != nil && !errors.Is(err, registry.ErrNotFound) {
			return err
		}
		if quote != nil {
			if err := tx.InsertSale(sale); err != nil {
				return err
			}
			if err := tx.AttachSale(sale.ID, quote.HouseholdID, facts.IssuedDate); err != nil {
				return err
			}
			result.Status = StatusMatched
			result.Reason = ReasonPolicyNumber
			result.HouseholdID = quote.HouseholdID
			result.QuoteID = quote.ID
			result.SaleID = sale.ID
			return nil
		}

		// Step 2: score the agency's quoted households sharing the surname.
		ranked, err := e.scoreCandidates(tx, agencyID, row.LastName, facts)
		if err != nil {
			return err
		}
		if winner, ok := match.AutoMatch(ranked, e.cfg.Matching.AutoMatchMinScore, e.cfg.Matching.AutoMatchMinMargin); ok {
			if err := tx.InsertSale(sale); err != nil {
				return err
			}
			if err := tx.AttachSale(sale.ID, winner.HouseholdID, facts.IssuedDate); err != nil {
				return err
			}
			result.Status = StatusMatched
			result.HouseholdID = winner.HouseholdID
			result.QuoteID = winner.QuoteID
			result.SaleID = sale.ID
			if len(ranked) == 1 {
				result.Reason = ReasonSoleCandidate
			} else {
				result.Reason = ReasonScoredMatch
			}
			return nil
		}
		if len(ranked) > 0 {
			// Ambiguous: record the sale unlinked and hand the ranked
			// candidates to a human.
			if err := tx.InsertSale(sale); err != nil {
				return err
			}
			reviewCase, err := tx.CreateReviewCase(agencyID, sale.ID, toReviewCandidates(ranked))
			if err != nil {
				return err
			}
			result.Status = StatusFlagged
			result.Reason = ReasonAmbiguous
			result.SaleID = sale.ID
			result.CaseID = reviewCase.ID
			return nil
		}

		// Step 3: no quoted household shares the surname. One-call close.
		// A lead-only household with the exact same key (never a
		// candidate, it has no quotes) absorbs the sale instead of
		// colliding with a duplicate creation.
		if existingHousehold, err := tx.HouseholdByKey(agencyID, saleKey); err == nil {
			if err := tx.InsertSale(sale); err != nil {
				return err
			}
			if err := tx.AttachSale(sale.ID, existingHousehold.ID, facts.IssuedDate); err != nil {
				return err
			}
			result.Status = StatusMatched
			result.Reason = ReasonOneCallClose
			result.HouseholdID = existingHousehold.ID
			result.SaleID = sale.ID
			return nil
		} else if !errors.Is(err, registry.ErrNotFound) {
			return err
		}

		household, err := tx.CreateSoldHousehold(agencyID, registry.SaleContact{
			FirstName: sale.FirstName,
			LastName:  sale.LastName,
			Zip:       strings.TrimSpace(row.Zip),
		}, facts.IssuedDate)
		if err != nil {
			return err
		}
		sale.HouseholdID = household.ID
		if err := tx.InsertSale(sale); err != nil {
			return err
		}
		result.Status = StatusCreated
		result.Reason = ReasonOneCallClose
		result.HouseholdID = household.ID
		result.SaleID = sale.ID
		return nil
	})
	if err != nil {
		return failedResult(index, err)
	}
	return result
}

// resolveReplayedSale handles a sale row whose policy number is already on
// record. An identical row is an idempotent replay; a row with different
// facts is a conflict that must go to review rather than overwrite history.
func (e *Engine) resolveReplayedSale(tx *registry.Tx, agencyID string, existing *registry.Sale, row SaleRow, facts match.SaleFacts, result *RowResult) error {
	if saleRowEquals(existing, row, facts) {
		result.SaleID = existing.ID
		if existing.Linked() {
			result.Status = StatusMatched
			result.Reason = ReasonReplay
			result.HouseholdID = existing.HouseholdID
			return nil
		}
		// The earlier run flagged this sale; rejoin its open case.
		result.Status = StatusFlagged
		result.Reason = ReasonPendingReview
		pending, err := tx.PendingReviewCaseForSale(existing.ID)
		if err != nil && !errors.Is(err, registry.ErrNotFound) {
			return err
		}
		if pending != nil {
			result.CaseID = pending.ID
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"sale %d is unlinked with no open review case", existing.ID))
		}
		return nil
	}

	// Same policy number, different facts: never guess which row is right.
	sale := &registry.Sale{
		AgencyID:        agencyID,
		PolicyNumber:    existing.PolicyNumber,
		FirstName:       strings.TrimSpace(row.FirstName),
		LastName:        strings.TrimSpace(row.LastName),
		ProductType:     facts.Product,
		SubProducerCode: facts.SubProducer,
		Premium:         row.Premium,
		IssuedDate:      facts.IssuedDate,
	}
	if err := tx.InsertSale(sale); err != nil {
		return err
	}
	var candidates []registry.ReviewCandidate
	if existing.Linked() {
		candidates = append(candidates, registry.ReviewCandidate{
			HouseholdID: existing.HouseholdID,
			Reasons:     []string{ReasonPolicyConflict},
		})
	}
	reviewCase, err := tx.CreateReviewCase(agencyID, sale.ID, candidates)
	if err != nil {
		return err
	}
	result.Status = StatusFlagged
	result.Reason = ReasonPolicyConflict
	result.SaleID = sale.ID
	result.CaseID = reviewCase.ID
	result.Warnings = append(result.Warnings, fmt.Sprintf(
		"policy number %s already recorded as sale %d with different details", existing.PolicyNumber, existing.ID))
	return nil
}

// scoreCandidates scores every quoted household sharing the sale's surname
// against its best quote and returns the ranked list.
func (e *Engine) scoreCandidates(tx *registry.Tx, agencyID, lastName string, facts match.SaleFacts) ([]match.Candidate, error) {
	households, err := tx.CandidatesByLastName(agencyID, lastName)
	if err != nil {
		return nil, err
	}
	candidates := make([]match.Candidate, 0, len(households))
	for _, household := range households {
		quotes, err := tx.QuotesForHousehold(household.ID)
		if err != nil {
			return nil, err
		}
		quoteFacts := make([]match.QuoteFacts, 0, len(quotes))
		for _, quote := range quotes {
			quoteFacts = append(quoteFacts, match.QuoteFacts{
				QuoteID:        quote.ID,
				Product:        quote.ProductType,
				SubProducer:    quote.SubProducerCode,
				Premium:        quote.Premium,
				ProductionDate: quote.ProductionDate,
			})
		}
		best, quoteID := match.BestQuoteScore(facts, quoteFacts, e.cfg.Matching.PremiumTolerance)
		candidates = append(candidates, match.Candidate{
			HouseholdID: household.ID,
			QuoteID:     quoteID,
			Score:       best.Value,
			Reasons:     best.Reasons,
		})
	}
	return match.Rank(candidates), nil
}

func toReviewCandidates(ranked []match.Candidate) []registry.ReviewCandidate {
	out := make([]registry.ReviewCandidate, 0, len(ranked))
	for _, candidate := range ranked {
		out = append(out, registry.ReviewCandidate{
			HouseholdID: candidate.HouseholdID,
			QuoteID:     candidate.QuoteID,
			Score:       candidate.Score,
			Reasons:     candidate.Reasons,
		})
	}
	return out
}

func saleRowEquals(existing *registry.Sale, row SaleRow, facts match.SaleFacts) bool {
	return strings.EqualFold(existing.FirstName, strings.TrimSpace(row.FirstName)) &&
		strings.EqualFold(existing.LastName, strings.TrimSpace(row.LastName)) &&
		existing.ProductType == facts.Product &&
		existing.SubProducerCode == facts.SubProducer &&
		existing.Premium == row.Premium &&
		existing.IssuedDate.Equal(facts.IssuedDate)
}

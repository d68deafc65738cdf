// Package review resolves flagged sale-to-household cases by human
// decision. Resolving a case is the only way a flagged sale gets linked.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"lqsmatch/internal/logging"
	"lqsmatch/internal/registry"
)

// Decision is a reviewer's verdict on a case. A zero HouseholdID means the
// sale belongs to a brand-new household (one-call close).
type Decision struct {
	HouseholdID int64
}

// ParseDecision interprets CLI input: "new" or a household ID.
func ParseDecision(raw string) (Decision, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == registry.ResolutionNew {
		return Decision{}, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return Decision{}, fmt.Errorf("decision must be %q or a household id, got %q", registry.ResolutionNew, raw)
	}
	return Decision{HouseholdID: id}, nil
}

// Outcome describes the state after a case is resolved.
type Outcome struct {
	CaseID           int64
	SaleID           int64
	HouseholdID      int64
	CreatedHousehold bool
}

// Service applies review decisions against the registry.
type Service struct {
	store  *registry.Store
	logger *slog.Logger
}

// NewService creates a review service. logger may be nil.
func NewService(store *registry.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logging.NewComponentLogger(logger, "review"),
	}
}

// ListPending returns an agency's open review cases in creation order.
func (s *Service) ListPending(ctx context.Context, agencyID string) ([]*registry.ReviewCase, error) {
	return s.store.PendingReviewCases(ctx, agencyID)
}

// Resolve applies a decision to a pending case: link the sale to the chosen
// household, or create a new sold household for it. A case resolves exactly
// once; a second attempt returns registry.ErrAlreadyResolved.
func (s *Service) Resolve(ctx context.Context, caseID int64, decision Decision) (*Outcome, error) {
	var outcome Outcome
	err := s.store.WithTx(ctx, func(tx *registry.Tx) error {
		reviewCase, err := tx.ReviewCaseByID(caseID)
		if err != nil {
			return err
		}
		if reviewCase.Status == registry.CaseResolved {
			return fmt.Errorf("%w: case %d", registry.ErrAlreadyResolved, caseID)
		}
		sale, err := tx.SaleByID(reviewCase.SaleID)
		if err != nil {
			return err
		}

		var (
			householdID int64
			resolution  string
		)
		if decision.HouseholdID == 0 {
			household, err := tx.CreateSoldHousehold(reviewCase.AgencyID, registry.SaleContact{
				FirstName: sale.FirstName,
				LastName:  sale.LastName,
			}, sale.IssuedDate)
			if err != nil {
				return err
			}
			householdID = household.ID
			resolution = registry.ResolutionNew
			outcome.CreatedHousehold = true
		} else {
			household, err := tx.HouseholdByID(decision.HouseholdID)
			if err != nil {
				return err
			}
			if household.AgencyID != reviewCase.AgencyID {
				return fmt.Errorf("household %d belongs to another agency", decision.HouseholdID)
			}
			householdID = household.ID
			resolution = strconv.FormatInt(householdID, 10)
		}
		if err := tx.AttachSale(sale.ID, householdID, sale.IssuedDate); err != nil {
			return err
		}
		if err := tx.MarkReviewCaseResolved(caseID, resolution, time.Now().UTC()); err != nil {
			return err
		}
		outcome.CaseID = caseID
		outcome.SaleID = sale.ID
		outcome.HouseholdID = householdID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("review case resolved",
		logging.Int64(logging.FieldCaseID, outcome.CaseID),
		logging.Int64(logging.FieldHousehold, outcome.HouseholdID),
		logging.Bool("created_household", outcome.CreatedHousehold),
	)
	return &outcome, nil
}

package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lqsmatch/internal/ingest"
	"lqsmatch/internal/logging"
	"lqsmatch/internal/registry"
	"lqsmatch/internal/review"
	"lqsmatch/internal/testsupport"
)

const agency = "agency-1"

func day(offset int) ingest.Date {
	return ingest.Date{Time: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)}
}

// flagAmbiguousSale seeds two indistinguishable quoted households and one
// ambiguous sale, returning the open case and the candidate household IDs.
func flagAmbiguousSale(t *testing.T, engine *ingest.Engine) (caseID int64, candidates []int64) {
	t.Helper()
	ctx := context.Background()

	for _, first := range []string{"John", "Mary"} {
		report, err := engine.IngestQuotes(ctx, agency, []ingest.QuoteRow{{
			FirstName: first, LastName: "Smith", Zip: "12345",
			ProductType: "Auto", SubProducerCode: "12 - Jane Producer",
			Premium: 1000, ProductionDate: day(1),
		}})
		if err != nil {
			t.Fatalf("IngestQuotes: %v", err)
		}
		candidates = append(candidates, report.Results[0].HouseholdID)
	}

	report, err := engine.IngestSales(ctx, agency, []ingest.SaleRow{{
		PolicyNumber: "POL-1", FirstName: "J", LastName: "Smith",
		ProductType: "Auto", SubProducerCode: "12 - Jane Producer",
		Premium: 1000, IssuedDate: day(10),
	}})
	if err != nil {
		t.Fatalf("IngestSales: %v", err)
	}
	result := report.Results[0]
	if result.Status != ingest.StatusFlagged {
		t.Fatalf("seed sale status = %s, want flagged", result.Status)
	}
	return result.CaseID, candidates
}

func newFixture(t *testing.T) (*review.Service, *ingest.Engine, *registry.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	engine := ingest.NewEngine(store, cfg, logging.NewNop())
	return review.NewService(store, logging.NewNop()), engine, store
}

func TestParseDecision(t *testing.T) {
	if d, err := review.ParseDecision("new"); err != nil || d.HouseholdID != 0 {
		t.Fatalf("ParseDecision(new) = %+v, %v", d, err)
	}
	if d, err := review.ParseDecision(" 42 "); err != nil || d.HouseholdID != 42 {
		t.Fatalf("ParseDecision(42) = %+v, %v", d, err)
	}
	for _, raw := range []string{"", "0", "-3", "household"} {
		if _, err := review.ParseDecision(raw); err == nil {
			t.Fatalf("ParseDecision(%q) accepted invalid input", raw)
		}
	}
}

func TestResolveLinksChosenHousehold(t *testing.T) {
	service, engine, store := newFixture(t)
	ctx := context.Background()

	caseID, candidates := flagAmbiguousSale(t, engine)

	outcome, err := service.Resolve(ctx, caseID, review.Decision{HouseholdID: candidates[0]})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome.HouseholdID != candidates[0] || outcome.CreatedHousehold {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	household, err := store.HouseholdByID(ctx, candidates[0])
	if err != nil {
		t.Fatalf("HouseholdByID: %v", err)
	}
	if household.Status != registry.StatusSold {
		t.Fatalf("chosen household status = %s, want sold", household.Status)
	}
	other, err := store.HouseholdByID(ctx, candidates[1])
	if err != nil {
		t.Fatalf("HouseholdByID: %v", err)
	}
	if other.Status != registry.StatusQuoted {
		t.Fatalf("unchosen household status = %s, want quoted", other.Status)
	}

	pending, err := service.ListPending(ctx, agency)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("case still pending after resolution: %+v", pending)
	}
}

func TestResolveCreatesNewHousehold(t *testing.T) {
	service, engine, store := newFixture(t)
	ctx := context.Background()

	caseID, candidates := flagAmbiguousSale(t, engine)

	outcome, err := service.Resolve(ctx, caseID, review.Decision{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !outcome.CreatedHousehold {
		t.Fatal("expected a new household")
	}
	for _, id := range candidates {
		if outcome.HouseholdID == id {
			t.Fatal("new-household decision reused a candidate")
		}
	}

	household, err := store.HouseholdByID(ctx, outcome.HouseholdID)
	if err != nil {
		t.Fatalf("HouseholdByID: %v", err)
	}
	if household.Status != registry.StatusSold {
		t.Fatalf("new household status = %s, want sold", household.Status)
	}
	if household.SoldDate == nil || !household.SoldDate.Equal(day(10).Time) {
		t.Fatalf("sold_date = %v, want the sale's issued date", household.SoldDate)
	}
}

func TestResolveExactlyOnce(t *testing.T) {
	service, engine, _ := newFixture(t)
	ctx := context.Background()

	caseID, candidates := flagAmbiguousSale(t, engine)

	if _, err := service.Resolve(ctx, caseID, review.Decision{HouseholdID: candidates[0]}); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	_, err := service.Resolve(ctx, caseID, review.Decision{HouseholdID: candidates[1]})
	if !errors.Is(err, registry.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
}

func TestResolveRejectsForeignHousehold(t *testing.T) {
	service, engine, store := newFixture(t)
	ctx := context.Background()

	caseID, _ := flagAmbiguousSale(t, engine)

	// A household in another agency is never a valid target.
	var foreignID int64
	err := store.WithTx(ctx, func(tx *registry.Tx) error {
		household, err := tx.CreateSoldHousehold("agency-2", registry.SaleContact{
			FirstName: "Eve", LastName: "Jones", Zip: "00001",
		}, day(1).Time)
		if err != nil {
			return err
		}
		foreignID = household.ID
		return nil
	})
	if err != nil {
		t.Fatalf("seed foreign household: %v", err)
	}

	if _, err := service.Resolve(ctx, caseID, review.Decision{HouseholdID: foreignID}); err == nil {
		t.Fatal("cross-agency resolution accepted")
	}

	pending, err := service.ListPending(ctx, agency)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("case not left pending after failed resolution: %+v", pending)
	}
}

func TestResolveUnknownCase(t *testing.T) {
	service, _, _ := newFixture(t)
	_, err := service.Resolve(context.Background(), 999, review.Decision{})
	if !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

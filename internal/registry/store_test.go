package registry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lqsmatch/internal/identity"
	"lqsmatch/internal/registry"
	"lqsmatch/internal/testsupport"
)

func date(offset int) time.Time {
	return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func leadContact(first, last, zip string) registry.LeadContact {
	return registry.LeadContact{
		Key:          identity.HouseholdKey(last, first, zip),
		FirstName:    first,
		LastName:     last,
		Zip:          zip,
		ReceivedDate: date(0),
	}
}

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable {
		t.Fatalf("unexpected health: %+v", health)
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("missing tables: %v", health.MissingTables)
	}
	if !health.IntegrityCheck {
		t.Fatal("integrity check failed")
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	again := testsupport.MustOpenStore(t, cfg)
	if _, err := again.Stats(context.Background()); err != nil {
		t.Fatalf("Stats after reopen failed: %v", err)
	}
}

func TestUpsertFromLeadCreatesAndUpdates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	var first *registry.Household
	err := store.WithTx(ctx, func(tx *registry.Tx) error {
		var created bool
		var err error
		lead := leadContact("John", "Smith", "12345")
		lead.Phone = "555-0100"
		first, created, err = tx.UpsertFromLead("agency-1", lead)
		if err != nil {
			return err
		}
		if !created {
			t.Fatal("expected household to be created")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if first.Status != registry.StatusLead {
		t.Fatalf("status = %s, want lead", first.Status)
	}
	if !first.LeadReceivedDate.Equal(date(0)) {
		t.Fatalf("lead_received_date = %v", first.LeadReceivedDate)
	}

	// Replay with new contact details: same household, status untouched.
	err = store.WithTx(ctx, func(tx *registry.Tx) error {
		lead := leadContact("John", "Smith", "12345")
		lead.Phone = "555-0199"
		household, created, err := tx.UpsertFromLead("agency-1", lead)
		if err != nil {
			return err
		}
		if created {
			t.Fatal("replay created a duplicate household")
		}
		if household.ID != first.ID {
			t.Fatalf("replay resolved household %d, want %d", household.ID, first.ID)
		}
		if household.Phone != "555-0199" {
			t.Fatalf("phone not updated: %q", household.Phone)
		}
		if household.Status != registry.StatusLead {
			t.Fatalf("status changed on replay: %s", household.Status)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
}

func TestUpsertFromQuoteLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	key := identity.HouseholdKey("Smith", "John", "12345")
	contact := registry.QuoteContact{Key: key, FirstName: "John", LastName: "Smith", Zip: "12345"}

	// Quote with no prior lead: born quoted, both early dates set.
	err := store.WithTx(ctx, func(tx *registry.Tx) error {
		household, created, err := tx.UpsertFromQuote("agency-1", contact, date(3))
		if err != nil {
			return err
		}
		if !created {
			t.Fatal("expected creation")
		}
		if household.Status != registry.StatusQuoted {
			t.Fatalf("status = %s, want quoted", household.Status)
		}
		if !household.LeadReceivedDate.Equal(date(3)) {
			t.Fatalf("lead_received_date = %v, want quote date", household.LeadReceivedDate)
		}
		if household.FirstQuoteDate == nil || !household.FirstQuoteDate.Equal(date(3)) {
			t.Fatalf("first_quote_date = %v, want quote date", household.FirstQuoteDate)
		}
		// Re-quote keeps the original first quote date.
		again, created, err := tx.UpsertFromQuote("agency-1", contact, date(9))
		if err != nil {
			return err
		}
		if created {
			t.Fatal("re-quote created duplicate household")
		}
		if !again.FirstQuoteDate.Equal(date(3)) {
			t.Fatalf("first_quote_date moved to %v", again.FirstQuoteDate)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
}

func TestUpsertFromQuotePromotesLead(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *registry.Tx) error {
		lead := leadContact("John", "Smith", "12345")
		if _, _, err := tx.UpsertFromLead("agency-1", lead); err != nil {
			return err
		}
		contact := registry.QuoteContact{Key: lead.Key, FirstName: "John", LastName: "Smith", Zip: "12345"}
		household, _, err := tx.UpsertFromQuote("agency-1", contact, date(5))
		if err != nil {
			return err
		}
		if household.Status != registry.StatusQuoted {
			t.Fatalf("status = %s, want quoted", household.Status)
		}
		if !household.LeadReceivedDate.Equal(date(0)) {
			t.Fatalf("lead_received_date changed: %v", household.LeadReceivedDate)
		}
		if household.FirstQuoteDate == nil || !household.FirstQuoteDate.Equal(date(5)) {
			t.Fatalf("first_quote_date = %v", household.FirstQuoteDate)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
}

func TestTransitionToSold(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *registry.Tx) error {
		contact := registry.QuoteContact{
			Key:       identity.HouseholdKey("Smith", "John", "12345"),
			FirstName: "John", LastName: "Smith", Zip: "12345",
		}
		household, _, err := tx.UpsertFromQuote("agency-1", contact, date(1))
		if err != nil {
			return err
		}

		sold, err := tx.TransitionToSold(household.ID, date(7))
		if err != nil {
			return err
		}
		if sold.Status != registry.StatusSold {
			t.Fatalf("status = %s, want sold", sold.Status)
		}
		if sold.SoldDate == nil || !sold.SoldDate.Equal(date(7)) {
			t.Fatalf("sold_date = %v", sold.SoldDate)
		}

		// Same sold date replays cleanly.
		if _, err := tx.TransitionToSold(household.ID, date(7)); err != nil {
			t.Fatalf("idempotent transition failed: %v", err)
		}

		// A different sold date is a contract violation.
		_, err = tx.TransitionToSold(household.ID, date(9))
		if !errors.Is(err, registry.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
}

func TestCreateSoldHousehold(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *registry.Tx) error {
		household, err := tx.CreateSoldHousehold("agency-1", registry.SaleContact{
			FirstName: "Jane", LastName: "Doe", Zip: "54321",
		}, date(4))
		if err != nil {
			return err
		}
		if household.Status != registry.StatusSold {
			t.Fatalf("status = %s, want sold", household.Status)
		}
		if !household.LeadReceivedDate.Equal(date(4)) ||
			household.FirstQuoteDate == nil || !household.FirstQuoteDate.Equal(date(4)) ||
			household.SoldDate == nil || !household.SoldDate.Equal(date(4)) {
			t.Fatalf("milestone dates not aligned to sale date: %+v", household)
		}
		if household.LeadSource != registry.LeadSourceDirect {
			t.Fatalf("lead_source = %q, want %q", household.LeadSource, registry.LeadSourceDirect)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
}

func TestCandidatesByLastNameRequiresQuotes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *registry.Tx) error {
		// Lead-only household: no quotes, must not be a candidate.
		if _, _, err := tx.UpsertFromLead("agency-1", leadContact("Alice", "Jones", "10001")); err != nil {
			return err
		}
		// Quoted household with a quote record.
		contact := registry.QuoteContact{
			Key:       identity.HouseholdKey("Jones", "Mary", "10002"),
			FirstName: "Mary", LastName: "Jones", Zip: "10002",
		}
		quoted, _, err := tx.UpsertFromQuote("agency-1", contact, date(1))
		if err != nil {
			return err
		}
		if err := tx.InsertQuote(&registry.Quote{
			AgencyID:       "agency-1",
			HouseholdID:    quoted.ID,
			ProductType:    identity.ProductAuto,
			Premium:        900,
			ProductionDate: date(1),
		}); err != nil {
			return err
		}
		// Same surname, other agency: never a candidate.
		otherContact := registry.QuoteContact{
			Key:       identity.HouseholdKey("Jones", "Mary", "10003"),
			FirstName: "Mary", LastName: "Jones", Zip: "10003",
		}
		other, _, err := tx.UpsertFromQuote("agency-2", otherContact, date(1))
		if err != nil {
			return err
		}
		if err := tx.InsertQuote(&registry.Quote{
			AgencyID:       "agency-2",
			HouseholdID:    other.ID,
			ProductType:    identity.ProductAuto,
			Premium:        900,
			ProductionDate: date(1),
		}); err != nil {
			return err
		}

		candidates, err := tx.CandidatesByLastName("agency-1", "JONES")
		if err != nil {
			return err
		}
		if len(candidates) != 1 || candidates[0].ID != quoted.ID {
			t.Fatalf("unexpected candidates: %+v", candidates)
		}

		// Case-insensitive lookup.
		candidates, err = tx.CandidatesByLastName("agency-1", "jones")
		if err != nil {
			return err
		}
		if len(candidates) != 1 {
			t.Fatalf("case-insensitive lookup found %d candidates", len(candidates))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := store.WithTx(ctx, func(tx *registry.Tx) error {
		if _, _, err := tx.UpsertFromLead("agency-1", leadContact("John", "Smith", "12345")); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Households != 0 {
		t.Fatalf("rollback leaked %d households", stats.Households)
	}
}

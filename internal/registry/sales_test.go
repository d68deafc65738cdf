package registry_test

import (
	"context"
	"errors"
	"testing"

	"lqsmatch/internal/identity"
	"lqsmatch/internal/registry"
	"lqsmatch/internal/testsupport"
)

func TestLinkSaleIsImmutable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *registry.Tx) error {
		first := newQuotedHousehold(t, tx, "agency-1", "John", "Smith", "12345")
		second := newQuotedHousehold(t, tx, "agency-1", "Jane", "Doe", "54321")

		sale := &registry.Sale{
			AgencyID:     "agency-1",
			PolicyNumber: "POL-300",
			FirstName:    "John",
			LastName:     "Smith",
			ProductType:  identity.ProductAuto,
			Premium:      1000,
			IssuedDate:   date(10),
		}
		if err := tx.InsertSale(sale); err != nil {
			return err
		}
		if sale.Linked() {
			t.Fatal("new sale should be unlinked")
		}

		if err := tx.LinkSale(sale.ID, first.ID); err != nil {
			return err
		}
		// Re-link to the same household is a no-op.
		if err := tx.LinkSale(sale.ID, first.ID); err != nil {
			t.Fatalf("idempotent link failed: %v", err)
		}
		// Any other household is refused.
		err := tx.LinkSale(sale.ID, second.ID)
		if !errors.Is(err, registry.ErrSaleAlreadyLinked) {
			t.Fatalf("expected ErrSaleAlreadyLinked, got %v", err)
		}

		linked, err := tx.SaleByID(sale.ID)
		if err != nil {
			return err
		}
		if linked.HouseholdID != first.ID {
			t.Fatalf("sale linked to %d, want %d", linked.HouseholdID, first.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
}

func TestFindSaleByPolicyNumberReturnsEarliest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *registry.Tx) error {
		for _, premium := range []float64{900, 950} {
			sale := &registry.Sale{
				AgencyID:     "agency-1",
				PolicyNumber: "POL-400",
				FirstName:    "John",
				LastName:     "Smith",
				ProductType:  identity.ProductAuto,
				Premium:      premium,
				IssuedDate:   date(10),
			}
			if err := tx.InsertSale(sale); err != nil {
				return err
			}
		}
		sale, err := tx.FindSaleByPolicyNumber("agency-1", "POL-400")
		if err != nil {
			return err
		}
		if sale.Premium != 900 {
			t.Fatalf("got premium %.0f, want the earliest row", sale.Premium)
		}

		_, err = tx.FindSaleByPolicyNumber("agency-2", "POL-400")
		if !errors.Is(err, registry.ErrNotFound) {
			t.Fatalf("expected ErrNotFound across agencies, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
}

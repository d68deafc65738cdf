package identity_test

import (
	"testing"

	"lqsmatch/internal/identity"
)

func TestNormalizeProductType(t *testing.T) {
	cases := []struct {
		raw      string
		expected identity.ProductType
	}{
		{"Standard Auto", identity.ProductAuto},
		{"PRIVATE PASSENGER VEHICLE", identity.ProductAuto},
		{"Homeowners", identity.ProductHome},
		{"Condominium", identity.ProductHome},
		{"Mobile Home", identity.ProductMobile},
		{"Landlord Package", identity.ProductLandlord},
		{"Renters Policy", identity.ProductRenters},
		{"Personal Umbrella", identity.ProductUmbrella},
		{"Flood", identity.ProductFlood},
		{"Boat Owners", identity.ProductBoat},
		{"Motor Club", identity.ProductMotorClub},
		{"Scheduled Personal Property", identity.ProductSPP},
		{"Pet Insurance", identity.ProductOther},
		{"", identity.ProductUnknown},
		{"   ", identity.ProductUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			if got := identity.NormalizeProductType(tc.raw); got != tc.expected {
				t.Fatalf("NormalizeProductType(%q) = %s, want %s", tc.raw, got, tc.expected)
			}
		})
	}
}

func TestSubProducerCode(t *testing.T) {
	cases := []struct {
		raw      string
		expected string
	}{
		{"775-BRETT REAP", "775"},
		{"112-SOMENAME", "112"},
		{" 42 - TWO - HYPHENS ", "42"},
		{"900", "900"},
		{"", ""},
		{"Not Applicable", ""},
		{"NOT APPLICABLE", ""},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			if got := identity.SubProducerCode(tc.raw); got != tc.expected {
				t.Fatalf("SubProducerCode(%q) = %q, want %q", tc.raw, got, tc.expected)
			}
		})
	}
}

package identity_test

import (
	"testing"

	"lqsmatch/internal/identity"
)

func TestHouseholdKey(t *testing.T) {
	cases := []struct {
		name      string
		lastName  string
		firstName string
		zip       string
		expected  string
	}{
		{"plain", "Smith", "John", "12345", "SMITH_JOHN_12345"},
		{"whitespace trimmed", "  Smith ", " John ", " 12345 ", "SMITH_JOHN_12345"},
		{"punctuation stripped", "O'Brien", "Mary-Jane", "10001", "OBRIEN_MARYJANE_10001"},
		{"inner spaces collapsed", "Van Der Berg", "Mary Ann", "30301", "VANDERBERG_MARYANN_30301"},
		{"already upper", "JONES", "MARY", "10001", "JONES_MARY_10001"},
		{"empty names", "", "", "99999", "__99999"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := identity.HouseholdKey(tc.lastName, tc.firstName, tc.zip)
			if got != tc.expected {
				t.Fatalf("HouseholdKey(%q, %q, %q) = %q, want %q", tc.lastName, tc.firstName, tc.zip, got, tc.expected)
			}
		})
	}
}

func TestHouseholdKeyDeterministic(t *testing.T) {
	first := identity.HouseholdKey("de la Cruz", "José", "78501")
	second := identity.HouseholdKey("de la Cruz", "José", "78501")
	if first != second {
		t.Fatalf("expected identical keys, got %q and %q", first, second)
	}
}

func TestNormalizeLastName(t *testing.T) {
	if got := identity.NormalizeLastName("  o'Brien "); got != "OBRIEN" {
		t.Fatalf("NormalizeLastName = %q, want OBRIEN", got)
	}
}

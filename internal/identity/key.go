package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// HouseholdKey derives the canonical household identifier from a contact's
// last name, first name, and zip code as LASTNAME_FIRSTNAME_ZIP. Name parts
// are upper-cased, trimmed, and stripped of punctuation and inner spacing so
// that "O'Brien" and "OBrien" key identically.
func HouseholdKey(lastName, firstName, zip string) string {
	return keyPart(lastName) + "_" + keyPart(firstName) + "_" + strings.TrimSpace(zip)
}

func keyPart(value string) string {
	value = upper.String(strings.TrimSpace(value))
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeLastName upper-cases and strips punctuation from a surname the
// same way HouseholdKey does, for case-insensitive candidate lookups.
func NormalizeLastName(lastName string) string {
	return keyPart(lastName)
}

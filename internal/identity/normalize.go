package identity

import "strings"

// ProductType is the closed set of policy product categories the engine
// understands. Free-text product descriptions from any feed normalize into
// exactly one of these.
type ProductType string

const (
	ProductAuto      ProductType = "AUTO"
	ProductHome      ProductType = "HOME"
	ProductLandlord  ProductType = "LANDLORD"
	ProductRenters   ProductType = "RENTERS"
	ProductMobile    ProductType = "MOBILE"
	ProductUmbrella  ProductType = "UMBRELLA"
	ProductFlood     ProductType = "FLOOD"
	ProductBoat      ProductType = "BOAT"
	ProductMotorClub ProductType = "MOTOR_CLUB"
	ProductSPP       ProductType = "SPP"
	ProductOther     ProductType = "OTHER"
	ProductUnknown   ProductType = "UNKNOWN"
)

// productRules are evaluated in order; the first rule whose substring appears
// in the upper-cased input wins. More specific products sit above the generic
// ones so "MOBILE HOME" lands on MOBILE rather than HOME.
var productRules = []struct {
	product   ProductType
	fragments []string
}{
	{ProductLandlord, []string{"LANDLORD", "RENTAL DWELLING"}},
	{ProductRenters, []string{"RENTER", "TENANT"}},
	{ProductMobile, []string{"MOBILE", "MANUFACTURED"}},
	{ProductMotorClub, []string{"MOTOR CLUB", "ROADSIDE"}},
	{ProductUmbrella, []string{"UMBRELLA"}},
	{ProductFlood, []string{"FLOOD"}},
	{ProductBoat, []string{"BOAT", "WATERCRAFT", "MARINE"}},
	{ProductSPP, []string{"SPP", "SCHEDULED PERSONAL", "PERSONAL ARTICLES"}},
	{ProductAuto, []string{"AUTO", "VEHICLE", "MOTORCYCLE"}},
	{ProductHome, []string{"HOME", "DWELLING", "CONDO"}},
}

// NormalizeProductType maps a free-text product description onto the closed
// ProductType enumeration. Unmatched non-empty text maps to OTHER; empty or
// whitespace-only input maps to UNKNOWN. Total: every input has an answer.
func NormalizeProductType(raw string) ProductType {
	text := upper.String(strings.TrimSpace(raw))
	if text == "" {
		return ProductUnknown
	}
	for _, rule := range productRules {
		for _, fragment := range rule.fragments {
			if strings.Contains(text, fragment) {
				return rule.product
			}
		}
	}
	return ProductOther
}

// SubProducerCode extracts the producer code from a composite value such as
// "775-BRETT REAP", returning the portion before the first hyphen, trimmed.
// Empty input and the literal "not applicable" (any case) return "".
func SubProducerCode(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || strings.EqualFold(value, "not applicable") {
		return ""
	}
	if idx := strings.Index(value, "-"); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}

package match

import (
	"time"

	"lqsmatch/internal/identity"
)

// Point contributions per matching signal. The values are fixed; only the
// auto-match thresholds are configurable.
const (
	PointsProduct     = 40
	PointsSubProducer = 35
	PointsPremium     = 25
	PointsTemporal    = 10

	// MaxScore is the ceiling when every signal fires.
	MaxScore = PointsProduct + PointsSubProducer + PointsPremium + PointsTemporal
)

// Reason identifiers recorded against a score. These are stable strings:
// they are persisted on manual review cases and asserted in tests.
const (
	ReasonProductMatch     = "product_match"
	ReasonSubProducerMatch = "sub_producer_match"
	ReasonPremiumProximity = "premium_proximity"
	ReasonTemporalOrder    = "temporal_order"
)

// SaleFacts carries the already-normalized sale fields the scorer inspects.
type SaleFacts struct {
	Product     identity.ProductType
	SubProducer string
	Premium     float64
	IssuedDate  time.Time
}

// QuoteFacts carries the already-normalized quote fields the scorer inspects.
type QuoteFacts struct {
	QuoteID        int64
	Product        identity.ProductType
	SubProducer    string
	Premium        float64
	ProductionDate time.Time
}

// Result is a computed score with the signals that contributed to it.
type Result struct {
	Value   int
	Reasons []string
}

// Score computes the match score between a sale and a single quote.
// premiumTolerance is the maximum relative premium deviation that still
// earns the premium points (0.15 means within 15% of the quoted premium).
//
// Two UNKNOWN products never earn the product points: an absent product on
// both sides is no evidence the records describe the same policy.
func Score(sale SaleFacts, quote QuoteFacts, premiumTolerance float64) Result {
	var result Result
	if sale.Product == quote.Product && sale.Product != identity.ProductUnknown {
		result.Value += PointsProduct
		result.Reasons = append(result.Reasons, ReasonProductMatch)
	}
	if sale.SubProducer != "" && sale.SubProducer == quote.SubProducer {
		result.Value += PointsSubProducer
		result.Reasons = append(result.Reasons, ReasonSubProducerMatch)
	}
	if premiumWithinTolerance(sale.Premium, quote.Premium, premiumTolerance) {
		result.Value += PointsPremium
		result.Reasons = append(result.Reasons, ReasonPremiumProximity)
	}
	if !quote.ProductionDate.IsZero() && !sale.IssuedDate.IsZero() && quote.ProductionDate.Before(sale.IssuedDate) {
		result.Value += PointsTemporal
		result.Reasons = append(result.Reasons, ReasonTemporalOrder)
	}
	return result
}

// BestQuoteScore scores the sale against each of a household's quotes and
// returns the best result along with the quote that produced it. When two
// quotes tie, the earlier quote in the provided order wins, keeping the
// outcome deterministic for a stable input ordering.
func BestQuoteScore(sale SaleFacts, quotes []QuoteFacts, premiumTolerance float64) (Result, int64) {
	var (
		best        Result
		bestQuoteID int64
	)
	for i, quote := range quotes {
		result := Score(sale, quote, premiumTolerance)
		if i == 0 || result.Value > best.Value {
			best = result
			bestQuoteID = quote.QuoteID
		}
	}
	return best, bestQuoteID
}

func premiumWithinTolerance(salePremium, quotePremium, tolerance float64) bool {
	if quotePremium <= 0 || salePremium <= 0 {
		return false
	}
	diff := quotePremium - salePremium
	if diff < 0 {
		diff = -diff
	}
	return diff/quotePremium <= tolerance
}

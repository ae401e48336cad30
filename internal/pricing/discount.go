package pricing

import "github.com/shopspring/decimal"

// PromotionDiscount computes a promotion's discount against the whole order
// subtotal: every rule contributes, percentage rules against the full
// subtotal and fixed rules at face value, with product identity and quantity
// ranges ignored. This coarse order-wide figure is what the order entry
// screen applies and suggests; the finer-grained MatchRules/MatchedDiscount
// path computes per-item attribution.
func PromotionDiscount(p Promotion, subtotal decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range p.Rules {
		total = total.Add(ruleContribution(r, subtotal))
	}
	return total.Round(2)
}

// SuggestedDiscount returns the best discount any promotion in the catalog
// would give against the subtotal. It is advisory only and never affects
// the charged total.
func SuggestedDiscount(promotions []Promotion, subtotal decimal.Decimal) decimal.Decimal {
	best := decimal.Zero
	for _, p := range promotions {
		if d := PromotionDiscount(p, subtotal); d.GreaterThan(best) {
			best = d
		}
	}
	return best
}

package pricing

import "github.com/shopspring/decimal"

// Match pairs a line item with a promotion rule that applies to it.
type Match struct {
	Item LineItem
	Rule Rule
}

// MatchRules finds every (item, rule) pair where the rule's product matches
// the item's product and the item's quantity falls inside the rule's range,
// inclusive on both ends. A nil MaxQuantity is unbounded above.
//
// Pairs are not deduplicated: an item matches again for every rule carrying
// its product id, and a rule matches every line carrying its product.
func MatchRules(items []LineItem, rules []Rule) []Match {
	var matches []Match
	for _, r := range rules {
		for _, it := range items {
			if it.ProductID == "" || it.ProductID != r.ProductID {
				continue
			}
			if it.Quantity.LessThan(r.MinQuantity) {
				continue
			}
			if r.MaxQuantity != nil && it.Quantity.GreaterThan(*r.MaxQuantity) {
				continue
			}
			matches = append(matches, Match{Item: it, Rule: r})
		}
	}
	return matches
}

// MatchedDiscount turns a set of matches for one promotion into a discount
// amount. Percentage rules discount against the matched item's line total
// (falling back to quantity times unit price when no line total is stored);
// fixed rules contribute their value once per match. Contributions are never
// negative.
func MatchedDiscount(matches []Match) decimal.Decimal {
	total := decimal.Zero
	for _, m := range matches {
		ref := m.Item.LineTotal
		if ref.IsZero() {
			ref = m.Item.Quantity.Mul(m.Item.UnitPrice)
		}
		total = total.Add(ruleContribution(m.Rule, ref))
	}
	return total.Round(2)
}

// ruleContribution computes a single rule's discount against the reference
// amount, clamped at zero.
func ruleContribution(r Rule, reference decimal.Decimal) decimal.Decimal {
	if r.Operation == OperationPercentage {
		return floorAtZero(reference.Mul(r.Value).Div(hundred))
	}
	return floorAtZero(r.Value)
}

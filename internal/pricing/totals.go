package pricing

import "github.com/shopspring/decimal"

// ComputeTotals runs a single recomputation pass over the order state.
//
// The applied discount uses PromotionDiscount, the subtotal-wide method, even
// though MatchRules/MatchedDiscount can attribute discounts to individual
// lines. Both computations are kept: the order entry screen has always
// charged customers from the coarse figure, and changing that silently would
// change every order total. See DESIGN.md.
//
// Deterministic, allocation-light and O(items + promotions x rules); cheap
// enough to call on every keystroke.
func ComputeTotals(c Context) Totals {
	totalQty := decimal.Zero
	subtotal := decimal.Zero
	for _, it := range c.Items {
		totalQty = totalQty.Add(it.Quantity)
		// The stored line total is authoritative; it was derived when the
		// row was edited and is not recomputed here.
		subtotal = subtotal.Add(it.LineTotal)
	}

	suggested := SuggestedDiscount(c.Promotions, subtotal)

	applied := decimal.Zero
	if !c.Selection.None() {
		// An unknown id falls back to no discount; the order is still
		// submittable.
		if p, ok := FindPromotion(c.Promotions, string(c.Selection)); ok {
			applied = PromotionDiscount(p, subtotal)
		}
	}

	afterDiscount := floorAtZero(subtotal.Sub(applied))
	tax := afterDiscount.Mul(c.TaxRate).Round(2)
	total := afterDiscount.Add(tax).Round(2)

	return Totals{
		TotalQuantity:      totalQty,
		Subtotal:           subtotal,
		PromotionApplied:   applied,
		PromotionSuggested: suggested,
		Tax:                tax,
		Total:              total,
	}
}

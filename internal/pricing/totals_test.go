package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taxRate(t *testing.T) decimal.Decimal { return dec(t, "0.06") }

func singleItem(t *testing.T) []LineItem {
	return []LineItem{{
		ProductID: "7",
		Quantity:  dec(t, "10"),
		UnitPrice: dec(t, "100"),
		LineTotal: dec(t, "1000"),
	}}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(t, want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestComputeTotals_NoPromotion(t *testing.T) {
	got := ComputeTotals(Context{
		Items:     singleItem(t),
		Selection: SelectionNone,
		TaxRate:   taxRate(t),
	})

	assertDec(t, "10", got.TotalQuantity, "totalQty")
	assertDec(t, "1000", got.Subtotal, "subtotal")
	assertDec(t, "0", got.PromotionApplied, "promotionApplied")
	assertDec(t, "60", got.Tax, "tax")
	assertDec(t, "1060", got.Total, "total")
}

func TestComputeTotals_FixedPromotionSelected(t *testing.T) {
	promos := []Promotion{{
		ID:    "5",
		Rules: []Rule{{ProductID: "7", Operation: OperationFixed, Value: dec(t, "50")}},
	}}

	got := ComputeTotals(Context{
		Items:      singleItem(t),
		Promotions: promos,
		Selection:  "5",
		TaxRate:    taxRate(t),
	})

	assertDec(t, "50", got.PromotionApplied, "promotionApplied")
	assertDec(t, "57", got.Tax, "tax")
	assertDec(t, "1007", got.Total, "total")
}

func TestComputeTotals_PercentagePromotionSelected(t *testing.T) {
	promos := []Promotion{{
		ID:    "9",
		Rules: []Rule{{Operation: OperationPercentage, Value: dec(t, "10")}},
	}}

	got := ComputeTotals(Context{
		Items:      singleItem(t),
		Promotions: promos,
		Selection:  "9",
		TaxRate:    taxRate(t),
	})

	assertDec(t, "100", got.PromotionApplied, "promotionApplied")
	assertDec(t, "954", got.Total, "total")
}

func TestComputeTotals_UnsetShowsSuggestionWithoutApplying(t *testing.T) {
	promos := []Promotion{
		{ID: "1", Rules: []Rule{{Operation: OperationFixed, Value: dec(t, "50")}}},
		{ID: "2", Rules: []Rule{{Operation: OperationFixed, Value: dec(t, "80")}}},
	}

	got := ComputeTotals(Context{
		Items:      singleItem(t),
		Promotions: promos,
		Selection:  "",
		TaxRate:    taxRate(t),
	})

	assertDec(t, "80", got.PromotionSuggested, "promotionSuggested")
	assertDec(t, "0", got.PromotionApplied, "promotionApplied")
	assertDec(t, "1060", got.Total, "total")
}

func TestComputeTotals_SelectedPromotionIgnoresQuantityBounds(t *testing.T) {
	// The order-wide method applies the rule even though the item quantity
	// is outside the rule's range; the matched path excludes the same pair.
	items := []LineItem{{
		ProductID: "42",
		Quantity:  dec(t, "3"),
		UnitPrice: dec(t, "100"),
		LineTotal: dec(t, "300"),
	}}
	rule := Rule{
		ProductID:   "42",
		MinQuantity: dec(t, "5"),
		MaxQuantity: decPtr(t, "10"),
		Operation:   OperationFixed,
		Value:       dec(t, "50"),
	}
	promos := []Promotion{{ID: "3", Rules: []Rule{rule}}}

	got := ComputeTotals(Context{Items: items, Promotions: promos, Selection: "3", TaxRate: taxRate(t)})
	assertDec(t, "50", got.PromotionApplied, "promotionApplied")

	require.Empty(t, MatchRules(items, promos[0].Rules))
}

func TestComputeTotals_UnknownSelectionFallsBackToZero(t *testing.T) {
	got := ComputeTotals(Context{
		Items:     singleItem(t),
		Selection: "999",
		TaxRate:   taxRate(t),
	})

	assertDec(t, "0", got.PromotionApplied, "promotionApplied")
	assertDec(t, "1060", got.Total, "total")
}

func TestComputeTotals_NeverNegative(t *testing.T) {
	promos := []Promotion{{
		ID:    "1",
		Rules: []Rule{{Operation: OperationFixed, Value: dec(t, "99999")}},
	}}

	got := ComputeTotals(Context{
		Items:      singleItem(t),
		Promotions: promos,
		Selection:  "1",
		TaxRate:    taxRate(t),
	})

	assert.False(t, got.Tax.IsNegative())
	assert.False(t, got.Total.IsNegative())
	assertDec(t, "0", got.Total, "total")
}

func TestComputeTotals_Idempotent(t *testing.T) {
	ctx := Context{
		Items: singleItem(t),
		Promotions: []Promotion{{
			ID:    "1",
			Rules: []Rule{{Operation: OperationPercentage, Value: dec(t, "7.5")}},
		}},
		Selection: "1",
		TaxRate:   taxRate(t),
	}

	first := ComputeTotals(ctx)
	second := ComputeTotals(ctx)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.PromotionApplied.Equal(second.PromotionApplied))
	assert.True(t, first.PromotionSuggested.Equal(second.PromotionSuggested))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestComputeTotals_SubtotalMonotonicInQuantity(t *testing.T) {
	base := ComputeTotals(Context{Items: singleItem(t), TaxRate: taxRate(t)})

	items := singleItem(t)
	items[0].Quantity = dec(t, "11")
	items[0].LineTotal = LineTotal(items[0].Quantity, items[0].UnitPrice)
	grown := ComputeTotals(Context{Items: items, TaxRate: taxRate(t)})

	assert.True(t, grown.Subtotal.GreaterThanOrEqual(base.Subtotal))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.50", "12.50"},
		{"  7 ", "7"},
		{"", "0"},
		{"abc", "0"},
		{"12abc", "0"},
		{"-3", "-3"},
	}
	for _, tt := range tests {
		got := ParseNumber(tt.in)
		assert.True(t, dec(t, tt.want).Equal(got), "ParseNumber(%q): want %s, got %s", tt.in, tt.want, got)
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(dec(t, "3"), dec(t, "19.999"))
	assertDec(t, "60.00", got, "lineTotal")
}

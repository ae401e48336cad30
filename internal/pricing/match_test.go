package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func TestMatchRules(t *testing.T) {
	item := func(pid, qty string) LineItem {
		return LineItem{
			ProductID: pid,
			Quantity:  dec(t, qty),
			UnitPrice: dec(t, "10"),
			LineTotal: dec(t, "100"),
		}
	}

	tests := []struct {
		name    string
		items   []LineItem
		rules   []Rule
		matches int
	}{
		{
			name:    "product id mismatch excluded",
			items:   []LineItem{item("7", "5")},
			rules:   []Rule{{ProductID: "8", Value: dec(t, "5")}},
			matches: 0,
		},
		{
			name:    "empty item product id never matches",
			items:   []LineItem{item("", "5")},
			rules:   []Rule{{ProductID: "", Value: dec(t, "5")}},
			matches: 0,
		},
		{
			name:    "quantity below minimum excluded",
			items:   []LineItem{item("7", "3")},
			rules:   []Rule{{ProductID: "7", MinQuantity: dec(t, "5"), MaxQuantity: decPtr(t, "10")}},
			matches: 0,
		},
		{
			name:    "quantity at minimum matches",
			items:   []LineItem{item("7", "5")},
			rules:   []Rule{{ProductID: "7", MinQuantity: dec(t, "5"), MaxQuantity: decPtr(t, "10")}},
			matches: 1,
		},
		{
			name:    "quantity at maximum matches",
			items:   []LineItem{item("7", "10")},
			rules:   []Rule{{ProductID: "7", MinQuantity: dec(t, "5"), MaxQuantity: decPtr(t, "10")}},
			matches: 1,
		},
		{
			name:    "quantity above maximum excluded",
			items:   []LineItem{item("7", "11")},
			rules:   []Rule{{ProductID: "7", MinQuantity: dec(t, "5"), MaxQuantity: decPtr(t, "10")}},
			matches: 0,
		},
		{
			name:    "absent maximum is unbounded above",
			items:   []LineItem{item("7", "100000")},
			rules:   []Rule{{ProductID: "7", MinQuantity: dec(t, "5")}},
			matches: 1,
		},
		{
			name:  "same product on two lines matches one rule twice",
			items: []LineItem{item("7", "5"), item("7", "6")},
			rules: []Rule{{ProductID: "7", MinQuantity: dec(t, "1")}},

			matches: 2,
		},
		{
			name:    "scenario: qty 3 against range 5..10 excluded from matched path",
			items:   []LineItem{item("42", "3")},
			rules:   []Rule{{ProductID: "42", MinQuantity: dec(t, "5"), MaxQuantity: decPtr(t, "10"), Operation: OperationFixed, Value: dec(t, "50")}},
			matches: 0,
		},
		{
			name:    "same product in two rules matches one line twice",
			items:   []LineItem{item("7", "5")},
			rules:   []Rule{{ProductID: "7"}, {ProductID: "7"}},
			matches: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchRules(tt.items, tt.rules)
			assert.Len(t, got, tt.matches)
		})
	}
}

func TestMatchedDiscount(t *testing.T) {
	tests := []struct {
		name    string
		matches []Match
		want    string
	}{
		{
			name: "percentage uses the item line total",
			matches: []Match{{
				Item: LineItem{Quantity: dec(t, "10"), UnitPrice: dec(t, "100"), LineTotal: dec(t, "1000")},
				Rule: Rule{Operation: OperationPercentage, Value: dec(t, "10")},
			}},
			want: "100",
		},
		{
			name: "percentage falls back to qty times unit price when no line total stored",
			matches: []Match{{
				Item: LineItem{Quantity: dec(t, "4"), UnitPrice: dec(t, "25")},
				Rule: Rule{Operation: OperationPercentage, Value: dec(t, "10")},
			}},
			want: "10",
		},
		{
			name: "fixed contributes once per occurrence, not scaled by quantity",
			matches: []Match{
				{
					Item: LineItem{Quantity: dec(t, "50"), LineTotal: dec(t, "500")},
					Rule: Rule{Operation: OperationFixed, Value: dec(t, "5")},
				},
				{
					Item: LineItem{Quantity: dec(t, "1"), LineTotal: dec(t, "10")},
					Rule: Rule{Operation: OperationFixed, Value: dec(t, "5")},
				},
			},
			want: "10",
		},
		{
			name: "negative rule value never produces a negative contribution",
			matches: []Match{{
				Item: LineItem{LineTotal: dec(t, "100")},
				Rule: Rule{Operation: OperationFixed, Value: dec(t, "-20")},
			}},
			want: "0",
		},
		{
			name:    "no matches means no discount",
			matches: nil,
			want:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchedDiscount(tt.matches)
			assert.True(t, dec(t, tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

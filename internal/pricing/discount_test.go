package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromotionDiscount(t *testing.T) {
	subtotal := "1000"

	tests := []struct {
		name  string
		rules []Rule
		want  string
	}{
		{
			name:  "percentage rule against the whole subtotal",
			rules: []Rule{{Operation: OperationPercentage, Value: dec(t, "10")}},
			want:  "100",
		},
		{
			name:  "fixed rule at face value",
			rules: []Rule{{Operation: OperationFixed, Value: dec(t, "50")}},
			want:  "50",
		},
		{
			name: "rules accumulate",
			rules: []Rule{
				{Operation: OperationPercentage, Value: dec(t, "5")},
				{Operation: OperationFixed, Value: dec(t, "30")},
			},
			want: "80",
		},
		{
			name: "quantity bounds are ignored by the order-wide method",
			rules: []Rule{{
				ProductID:   "42",
				MinQuantity: dec(t, "5"),
				MaxQuantity: decPtr(t, "10"),
				Operation:   OperationFixed,
				Value:       dec(t, "50"),
			}},
			want: "50",
		},
		{
			name:  "not clamped to the subtotal",
			rules: []Rule{{Operation: OperationFixed, Value: dec(t, "5000")}},
			want:  "5000",
		},
		{
			name:  "zero value contributes nothing",
			rules: []Rule{{Operation: OperationPercentage, Value: dec(t, "0")}},
			want:  "0",
		},
		{
			name:  "negative value clamped to zero",
			rules: []Rule{{Operation: OperationPercentage, Value: dec(t, "-10")}},
			want:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PromotionDiscount(Promotion{Rules: tt.rules}, dec(t, subtotal))
			assert.True(t, dec(t, tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestSuggestedDiscount(t *testing.T) {
	subtotal := dec(t, "1000")
	promos := []Promotion{
		{ID: "1", Rules: []Rule{{Operation: OperationFixed, Value: dec(t, "50")}}},
		{ID: "2", Rules: []Rule{{Operation: OperationFixed, Value: dec(t, "80")}}},
	}

	got := SuggestedDiscount(promos, subtotal)
	assert.True(t, dec(t, "80").Equal(got), "want 80, got %s", got)

	assert.True(t, SuggestedDiscount(nil, subtotal).IsZero())
}

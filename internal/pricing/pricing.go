// Package pricing computes sales-order totals: line subtotals, promotion
// discounts (both the item-matched and the order-wide variants), GST and the
// final payable amount. Everything in this package is pure and synchronous;
// it is safe to recompute on every edit of an order draft.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Operation enumerates the supported promotion rule discount strategies.
type Operation string

const (
	// OperationPercentage discounts a percentage of the reference amount.
	OperationPercentage Operation = "percentage"
	// OperationFixed discounts a fixed amount per rule application.
	OperationFixed Operation = "fixed"
)

// UnitOfMeasure values accepted on order lines.
const (
	UOMPieces   = "pcs"
	UOMKilogram = "kg"
	UOMBox      = "box"
)

// DefaultTaxRate is the GST rate applied to the post-discount subtotal.
var DefaultTaxRate = decimal.NewFromFloat(0.06)

var hundred = decimal.NewFromInt(100)

// LineItem is one product row of an order. LineTotal is derived from
// Quantity and UnitPrice when the row is edited and is never entered
// independently.
type LineItem struct {
	ProductID   string          `json:"productId"`
	ProductCode string          `json:"productCode"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UOM         string          `json:"uom"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// Rule is one discount condition within a promotion: a product, a quantity
// range and a fixed or percentage value. A nil MaxQuantity means the range
// is unbounded above.
type Rule struct {
	ProductID    string           `json:"productId"`
	AgentGroupID string           `json:"agentGroupId"`
	MinQuantity  decimal.Decimal  `json:"minimumQuantity"`
	MaxQuantity  *decimal.Decimal `json:"maximumQuantity,omitempty"`
	Operation    Operation        `json:"operationType"`
	Value        decimal.Decimal  `json:"value"`
}

// Promotion is a named, dated set of discount rules fetched read-only from
// the promotion catalog.
type Promotion struct {
	ID        string `json:"promotionId"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Rules     []Rule `json:"promotionProducts"`
}

// Selection is the operator's promotion choice. The zero value means no
// explicit choice was made yet: the best available discount is shown as a
// suggestion but nothing is applied. SelectionNone is the explicit
// "no promotion" choice. Any other value is a promotion id to apply
// regardless of whether it is the best option.
type Selection string

// SelectionNone forces the applied discount to zero.
const SelectionNone Selection = "0"

// None reports whether no promotion should be applied.
func (s Selection) None() bool {
	return s == "" || s == SelectionNone
}

// Context carries everything a totals recomputation needs. It is assembled
// by the caller on each edit; this package never holds state of its own.
type Context struct {
	Items      []LineItem
	Promotions []Promotion
	Selection  Selection
	TaxRate    decimal.Decimal
}

// Totals is the fully derived summary of an order. It is recomputed from
// scratch on every change and never persisted independently.
type Totals struct {
	TotalQuantity      decimal.Decimal `json:"totalQty"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	PromotionApplied   decimal.Decimal `json:"promotionApplied"`
	PromotionSuggested decimal.Decimal `json:"promotionSuggested"`
	Tax                decimal.Decimal `json:"tax"`
	Total              decimal.Decimal `json:"total"`
}

// ParseNumber converts a form field value to a decimal. Form values arrive
// as strings and are coerced best-effort: anything that does not parse as a
// number becomes zero. This is the single coercion point for user input;
// business logic past this boundary only sees decimals.
func ParseNumber(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// LineTotal derives a row total from quantity and unit price, rounded to
// two decimal places.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// FindPromotion locates a promotion by id. Ids are compared as strings since
// they arrive as numbers from some endpoints and strings from others.
func FindPromotion(promotions []Promotion, id string) (Promotion, bool) {
	for _, p := range promotions {
		if p.ID == id {
			return p, true
		}
	}
	return Promotion{}, false
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

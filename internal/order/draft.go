// Package order turns an operator's draft into priced totals and a submit
// payload. It owns the order entry flow: load a draft, fill gaps from the
// catalog and the agent record, recompute totals, build the request body.
package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sellkit/orderdesk/internal/pricing"
)

// Value is a form field as drafts carry it: a string, a number or null.
// Numbers keep their canonical text form; null becomes the empty string.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	*v = Value(data)
	return nil
}

func (v Value) String() string { return string(v) }

// Decimal coerces the field to a number, with unparseable input becoming
// zero.
func (v Value) Decimal() decimal.Decimal {
	return pricing.ParseNumber(string(v))
}

// DraftItem is one line of a draft. Price is an explicit row total; when
// present it wins over qty times unit price.
type DraftItem struct {
	ProductID   Value  `json:"productId"`
	ProductCode string `json:"productCode"`
	Description string `json:"description"`
	Quantity    Value  `json:"qty" validate:"required"`
	UOM         string `json:"uom" validate:"omitempty,oneof=pcs kg box"`
	UnitPrice   Value  `json:"unitPrice"`
	Price       Value  `json:"price"`
}

// Draft is an order as the operator typed it, before pricing.
type Draft struct {
	OrderNumber   string      `json:"orderNumber"`
	AgentID       Value       `json:"agentId" validate:"required"`
	PartnerID     Value       `json:"partnerId"`
	PromotionID   Value       `json:"promotionId"`
	Date          string      `json:"date"`
	ContactPerson string      `json:"contactPerson"`
	ContactPhone  string      `json:"contactPhone"`
	Address       string      `json:"address"`
	CreditTerm    string      `json:"creditTerm"`
	CreditLimit   string      `json:"creditLimit"`
	Remark        string      `json:"remark"`
	Status        string      `json:"status"`
	Courier       string      `json:"courier"`
	ShippingPrice Value       `json:"shippingPrice"`
	Items         []DraftItem `json:"items" validate:"required,min=1,dive"`
}

// LoadDraft reads a draft from a JSON file.
func LoadDraft(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read draft")
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "parse draft")
	}
	return &d, nil
}

// Selection returns the draft's promotion choice.
func (d *Draft) Selection() pricing.Selection {
	return pricing.Selection(d.PromotionID)
}

// LineItems converts the draft rows to priced line items. An explicit row
// price wins; otherwise the total derives from quantity and unit price.
func (d *Draft) LineItems() []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		qty := it.Quantity.Decimal()
		unit := it.UnitPrice.Decimal()
		total := it.Price.Decimal()
		if total.IsZero() {
			total = pricing.LineTotal(qty, unit)
		}
		items = append(items, pricing.LineItem{
			ProductID:   it.ProductID.String(),
			ProductCode: it.ProductCode,
			Description: it.Description,
			Quantity:    qty,
			UOM:         it.UOM,
			UnitPrice:   unit,
			LineTotal:   total,
		})
	}
	return items
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the draft and returns warnings. Warnings never block a
// submit; the backend has the final say and its rejection message is
// surfaced instead.
func (d *Draft) Validate() []string {
	var warnings []string

	err := validate.Struct(d)
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		for _, fe := range invalid {
			warnings = append(warnings, fmt.Sprintf("%s: failed %q check", fieldPath(fe), fe.Tag()))
		}
	} else if err != nil {
		warnings = append(warnings, err.Error())
	}

	for i, it := range d.Items {
		if notNumeric(it.Quantity) {
			warnings = append(warnings, fmt.Sprintf("items[%d].qty: %q is not a number, treated as 0", i, it.Quantity))
		}
		if notNumeric(it.UnitPrice) {
			warnings = append(warnings, fmt.Sprintf("items[%d].unitPrice: %q is not a number, treated as 0", i, it.UnitPrice))
		}
	}
	return warnings
}

// notNumeric reports whether a non-empty field will coerce to zero because
// it does not parse.
func notNumeric(v Value) bool {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return false
	}
	_, err := decimal.NewFromString(s)
	return err != nil
}

// fieldPath strips the struct name from a validator namespace so warnings
// read like the draft JSON.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

package order

import (
	"fmt"
	"time"

	"github.com/sellkit/orderdesk/internal/pricing"
	"github.com/sellkit/orderdesk/internal/salesapi"
)

// dateLayout is the short form drafts usually carry.
const dateLayout = "2006-01-02"

// defaultStatus is stamped on orders submitted without one.
const defaultStatus = "pending"

// BuildPayload assembles the request body from the priced draft. orderID is
// zero on create and the existing id on update; now stamps defaults for
// missing fields.
func BuildPayload(d *Draft, items []pricing.LineItem, totals pricing.Totals, orderID int64, now time.Time) *salesapi.OrderPayload {
	number := d.OrderNumber
	if number == "" {
		number = fmt.Sprintf("ORD-%d", now.UnixMilli())
	}

	status := d.Status
	if status == "" {
		status = defaultStatus
	}

	p := &salesapi.OrderPayload{
		OrderNumber:   number,
		AgentID:       d.AgentID.String(),
		PartnerID:     d.PartnerID.String(),
		PromotionID:   pricing.ParseNumber(d.PromotionID.String()).IntPart(),
		SONumber:      number,
		Date:          parseDate(d.Date, now),
		Address:       d.Address,
		Status:        status,
		Remark:        d.Remark,
		SubTotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Courier:       d.Courier,
		ShippingPrice: d.ShippingPrice.Decimal(),
		CreditTerm:    d.CreditTerm,
		CreditLimit:   d.CreditLimit,
		Items:         make([]salesapi.PayloadItem, 0, len(items)),
	}

	for _, it := range items {
		p.Items = append(p.Items, salesapi.PayloadItem{
			ProductID:   pricing.ParseNumber(it.ProductID).IntPart(),
			ProductCode: it.ProductCode,
			Description: it.Description,
			Quantity:    it.Quantity,
			UOM:         it.UOM,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
			OrderID:     orderID,
		})
	}
	return p
}

// parseDate accepts the short draft form or a full timestamp, falling back
// to now.
func parseDate(s string, now time.Time) time.Time {
	if s == "" {
		return now
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return now
}

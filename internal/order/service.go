package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sellkit/orderdesk/internal/pricing"
	"github.com/sellkit/orderdesk/internal/salesapi"
)

// API is the slice of the backend client the order flow uses.
type API interface {
	GetAgent(ctx context.Context, id string) (*salesapi.Agent, error)
	GetOrder(ctx context.Context, id string) (*salesapi.Order, error)
	CreateOrder(ctx context.Context, p *salesapi.OrderPayload) (*salesapi.OrderResult, error)
	UpdateOrder(ctx context.Context, id string, p *salesapi.OrderPayload) (*salesapi.OrderResult, error)
}

// Catalog resolves products and lists promotions without a round trip.
type Catalog interface {
	LookupID(id string) (salesapi.Product, bool)
	LookupCode(code string) (salesapi.Product, bool)
	Promotions() []pricing.Promotion
}

// Service prices drafts and submits them.
type Service struct {
	api     API
	catalog Catalog
	taxRate decimal.Decimal
	now     func() time.Time
}

// New wires a Service. taxRate applies to every totals computation.
func New(api API, catalog Catalog, taxRate decimal.Decimal) *Service {
	return &Service{
		api:     api,
		catalog: catalog,
		taxRate: taxRate,
		now:     time.Now,
	}
}

// Priced is a draft after pricing: the resolved line items and the derived
// totals, plus any validation warnings.
type Priced struct {
	Items    []pricing.LineItem
	Totals   pricing.Totals
	Warnings []string
}

// Price resolves the draft against the catalog and computes totals. Rows
// that name a product the catalog knows get their code, description and
// unit price prefilled when the draft left them blank.
func (s *Service) Price(d *Draft) Priced {
	items := d.LineItems()
	for i := range items {
		s.prefill(&items[i])
	}

	totals := pricing.ComputeTotals(pricing.Context{
		Items:      items,
		Promotions: s.catalog.Promotions(),
		Selection:  d.Selection(),
		TaxRate:    s.taxRate,
	})

	return Priced{
		Items:    items,
		Totals:   totals,
		Warnings: d.Validate(),
	}
}

// prefill fills blank row fields from the catalog, by id first and falling
// back to the product code. The unit price only prefills when the draft has
// none, so an operator override sticks.
func (s *Service) prefill(it *pricing.LineItem) {
	p, ok := s.catalog.LookupID(it.ProductID)
	if !ok {
		p, ok = s.catalog.LookupCode(it.ProductCode)
	}
	if !ok {
		return
	}

	if it.ProductID == "" {
		it.ProductID = p.ID
	}
	if it.ProductCode == "" {
		it.ProductCode = p.Code
	}
	if it.Description == "" {
		it.Description = p.Name
	}
	if it.UnitPrice.IsZero() && !p.Price.IsZero() {
		it.UnitPrice = p.Price
		if it.LineTotal.IsZero() {
			it.LineTotal = pricing.LineTotal(it.Quantity, it.UnitPrice)
		}
	}
}

// Submit prices the draft and creates the order. Credit term and limit are
// prefilled from the agent record when the draft leaves them empty; a
// failed agent lookup only logs, since the backend validates credit anyway.
func (s *Service) Submit(ctx context.Context, d *Draft) (*salesapi.OrderResult, Priced, error) {
	priced := s.Price(d)
	s.prefillCredit(ctx, d)

	payload := BuildPayload(d, priced.Items, priced.Totals, 0, s.now())
	res, err := s.api.CreateOrder(ctx, payload)
	if err != nil {
		return nil, priced, errors.Wrap(err, "submit order")
	}
	return res, priced, nil
}

func (s *Service) prefillCredit(ctx context.Context, d *Draft) {
	if d.CreditTerm != "" && d.CreditLimit != "" {
		return
	}
	agent, err := s.api.GetAgent(ctx, d.AgentID.String())
	if err != nil || agent == nil {
		zctx.From(ctx).Debug("agent lookup for credit prefill failed",
			zap.String("agent_id", d.AgentID.String()),
			zap.Error(err))
		return
	}
	if d.CreditTerm == "" {
		d.CreditTerm = agent.CreditTerm
	}
	if d.CreditLimit == "" {
		d.CreditLimit = agent.CreditLimit
	}
}

// Update fetches an existing order, overlays the draft's fields on it and
// replaces it. Draft fields left empty keep the stored value.
func (s *Service) Update(ctx context.Context, id string, d *Draft) (*salesapi.OrderResult, Priced, error) {
	existing, err := s.api.GetOrder(ctx, id)
	if err != nil {
		return nil, Priced{}, errors.Wrapf(err, "load order %s", id)
	}
	if existing == nil {
		return nil, Priced{}, errors.Errorf("order %s not found", id)
	}

	merged := mergeDraft(d, existing)
	priced := s.Price(merged)
	s.prefillCredit(ctx, merged)

	payload := BuildPayload(merged, priced.Items, priced.Totals, pricing.ParseNumber(existing.ID).IntPart(), s.now())
	res, err := s.api.UpdateOrder(ctx, existing.ID, payload)
	if err != nil {
		return nil, priced, errors.Wrapf(err, "update order %s", id)
	}
	return res, priced, nil
}

// mergeDraft overlays draft fields on a stored order. The draft's item list
// replaces the stored one entirely when present.
func mergeDraft(d *Draft, o *salesapi.Order) *Draft {
	m := *d
	if m.OrderNumber == "" {
		m.OrderNumber = o.SONumber
	}
	if m.AgentID == "" {
		m.AgentID = Value(o.AgentID)
	}
	if m.PartnerID == "" {
		m.PartnerID = Value(o.PartnerID)
	}
	if m.PromotionID == "" {
		m.PromotionID = Value(o.PromotionID)
	}
	if m.Date == "" {
		m.Date = o.Date
	}
	if m.ContactPerson == "" {
		m.ContactPerson = o.ContactPerson
	}
	if m.ContactPhone == "" {
		m.ContactPhone = o.ContactPhone
	}
	if m.Address == "" {
		m.Address = o.Address
	}
	if m.CreditTerm == "" {
		m.CreditTerm = o.CreditTerm
	}
	if m.CreditLimit == "" {
		m.CreditLimit = o.CreditLimit
	}
	if m.Remark == "" {
		m.Remark = o.Remark
	}
	if m.Status == "" {
		m.Status = o.Status
	}
	if len(m.Items) == 0 {
		m.Items = make([]DraftItem, 0, len(o.Items))
		for _, it := range o.Items {
			m.Items = append(m.Items, DraftItem{
				ProductID:   Value(it.ProductID),
				ProductCode: it.ProductCode,
				Description: it.Description,
				Quantity:    Value(it.Quantity.String()),
				UOM:         it.UOM,
				UnitPrice:   Value(it.UnitPrice.String()),
				Price:       Value(it.LineTotal.String()),
			})
		}
	}
	return &m
}

package salesapi

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/sellkit/orderdesk/internal/pricing"
)

// FetchPromotions loads the full promotion catalog.
func (c *Client) FetchPromotions(ctx context.Context) ([]pricing.Promotion, error) {
	body, _, err := c.get(ctx, "/api/promotion", nil)
	if err != nil {
		return nil, errors.Wrap(err, "fetch promotions")
	}

	var promotions []pricing.Promotion
	err = decodeList(body, func(d *jx.Decoder) error {
		p, err := decodePromotion(d)
		if err != nil {
			return err
		}
		promotions = append(promotions, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode promotions")
	}
	return promotions, nil
}

// CreatePromotion creates a promotion shell and returns its id when the
// backend includes one in the response.
func (c *Client) CreatePromotion(ctx context.Context, name, status, startDate, endDate string) (string, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("name")
	e.Str(name)
	e.FieldStart("status")
	e.Str(status)
	e.FieldStart("startDate")
	e.Str(startDate)
	e.FieldStart("endDate")
	e.Str(endDate)
	e.ObjEnd()

	body, err := c.send(ctx, http.MethodPost, "/api/promotion/create", e.Bytes())
	if err != nil {
		return "", errors.Wrap(err, "create promotion")
	}
	return createdID(body), nil
}

// RulePayload associates one discount rule with a promotion and agent group.
type RulePayload struct {
	PromotionID  string
	ProductID    string
	AgentGroupID string
	MinQuantity  decimal.Decimal
	MaxQuantity  *decimal.Decimal
	Operation    pricing.Operation
	Value        decimal.Decimal
}

// CreatePromotionRule attaches a rule to a promotion. Ids are sent as
// numbers, coerced from whatever form they were captured in.
func (c *Client) CreatePromotionRule(ctx context.Context, p RulePayload) error {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("promotionId")
	e.Int64(pricing.ParseNumber(p.PromotionID).IntPart())
	e.FieldStart("productId")
	e.Int64(pricing.ParseNumber(p.ProductID).IntPart())
	e.FieldStart("agentGroupId")
	e.Int64(pricing.ParseNumber(p.AgentGroupID).IntPart())
	e.FieldStart("minimumQuantity")
	encodeDecimal(&e, p.MinQuantity)
	e.FieldStart("maximumQuantity")
	if p.MaxQuantity == nil {
		e.Null()
	} else {
		encodeDecimal(&e, *p.MaxQuantity)
	}
	e.FieldStart("operationType")
	e.Str(string(p.Operation))
	e.FieldStart("value")
	encodeDecimal(&e, p.Value)
	e.ObjEnd()

	if _, err := c.send(ctx, http.MethodPost, "/api/promotion-agent-group/create", e.Bytes()); err != nil {
		return errors.Wrap(err, "create promotion rule")
	}
	return nil
}

func decodePromotion(d *jx.Decoder) (pricing.Promotion, error) {
	var p pricing.Promotion
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "promotionId", "id":
			p.ID, err = decodeStr(d)
		case "name":
			p.Name, err = decodeStr(d)
		case "status":
			p.Status, err = decodeStr(d)
		case "startDate":
			p.StartDate, err = decodeStr(d)
		case "endDate":
			p.EndDate, err = decodeStr(d)
		case "promotionProducts":
			if d.Next() != jx.Array {
				return d.Skip()
			}
			return d.Arr(func(d *jx.Decoder) error {
				r, err := decodeRule(d)
				if err != nil {
					return err
				}
				p.Rules = append(p.Rules, r)
				return nil
			})
		default:
			return d.Skip()
		}
		return err
	})
	return p, err
}

func decodeRule(d *jx.Decoder) (pricing.Rule, error) {
	var r pricing.Rule
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			r.ProductID, err = decodeStr(d)
		case "agentGroupId":
			r.AgentGroupID, err = decodeStr(d)
		case "minimumQuantity":
			r.MinQuantity, err = decodeDecimal(d)
		case "maximumQuantity":
			r.MaxQuantity, err = decodeDecimalPtr(d)
		case "operationType":
			var op string
			op, err = decodeStr(d)
			r.Operation = pricing.Operation(op)
		case "value":
			r.Value, err = decodeDecimal(d)
		default:
			return d.Skip()
		}
		return err
	})
	return r, err
}

// createdID digs the new resource id out of a create response, tolerating
// the usual envelope and id-name variations.
func createdID(body []byte) string {
	payload, _ := unwrapData(body)
	d := jx.DecodeBytes(payload)
	if d.Next() != jx.Object {
		return ""
	}
	var id string
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "promotionId", "orderId", "id":
			s, err := decodeStr(d)
			if err != nil {
				return err
			}
			if id == "" {
				id = s
			}
			return nil
		default:
			return d.Skip()
		}
	})
	return id
}

// encodeDecimal writes a decimal as a JSON number.
func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

package salesapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Order is a sales order as the backend returns it.
type Order struct {
	ID            string
	SONumber      string
	Date          string
	AgentID       string
	PartnerID     string
	PromotionID   string
	ContactPerson string
	ContactPhone  string
	Address       string
	CreditTerm    string
	CreditLimit   string
	Remark        string
	Status        string
	Items         []OrderItem
}

// OrderItem is one line of a fetched order.
type OrderItem struct {
	ProductID   string
	ProductCode string
	Description string
	Quantity    decimal.Decimal
	UOM         string
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// OrderResult is the backend's answer to a create or update.
type OrderResult struct {
	ID      string
	Message string
}

// OrderPayload is the exact request body of the order create/update
// endpoints. Every field must be present; the backend rejects sparse
// bodies.
type OrderPayload struct {
	OrderNumber        string
	AgentID            string
	PartnerID          string
	PromotionID        int64
	SONumber           string
	Date               time.Time
	Address            string
	Status             string
	Remark             string
	SubTotal           decimal.Decimal
	Tax                decimal.Decimal
	Total              decimal.Decimal
	Courier            string
	ShippingPrice      decimal.Decimal
	ReturnReason       string
	ReturnRemark       string
	CreditTerm         string
	CreditLimit        string
	AutocountStatus    string
	AutocountAccountID string
	Items              []PayloadItem
}

// PayloadItem is one normalized order line in the request body. All numeric
// fields are already coerced; OrderID is zero on create.
type PayloadItem struct {
	ProductID   int64
	ProductCode string
	Description string
	Quantity    decimal.Decimal
	UOM         string
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	OrderID     int64
}

// Encode writes the payload in the shape the order service expects,
// including the lifecycle fields that must be present as nulls and zeroes
// even on a brand-new order.
func (p *OrderPayload) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("orderNumber")
	e.Str(p.OrderNumber)
	e.FieldStart("agentId")
	e.Str(p.AgentID)
	e.FieldStart("partnerId")
	e.Str(p.PartnerID)
	e.FieldStart("promotionId")
	e.Int64(p.PromotionID)
	e.FieldStart("soNumber")
	e.Str(p.SONumber)
	e.FieldStart("date")
	e.Str(p.Date.UTC().Format(time.RFC3339))
	e.FieldStart("address")
	e.Str(p.Address)
	e.FieldStart("status")
	e.Str(p.Status)
	e.FieldStart("remark")
	e.Str(p.Remark)
	e.FieldStart("subTotal")
	encodeDecimal(e, p.SubTotal)
	e.FieldStart("tax")
	encodeDecimal(e, p.Tax)
	e.FieldStart("total")
	encodeDecimal(e, p.Total)
	e.FieldStart("courier")
	e.Str(p.Courier)
	e.FieldStart("shippingPrice")
	encodeDecimal(e, p.ShippingPrice)
	e.FieldStart("returnReason")
	e.Str(p.ReturnReason)
	e.FieldStart("returnRemark")
	e.Str(p.ReturnRemark)
	e.FieldStart("shippingInvoice")
	e.Null()
	e.FieldStart("approveDate")
	e.Null()
	e.FieldStart("shippedDate")
	e.Null()
	e.FieldStart("cancelledDate")
	e.Null()
	e.FieldStart("cancelledReason")
	e.Str("")
	e.FieldStart("completedDate")
	e.Null()
	e.FieldStart("returnDate")
	e.Null()
	e.FieldStart("autocountStatus")
	e.Str(p.AutocountStatus)
	e.FieldStart("autocountAccountId")
	e.Str(p.AutocountAccountID)
	e.FieldStart("isDeleted")
	e.Int(0)
	e.FieldStart("printDatetime")
	e.Null()
	e.FieldStart("creditTerm")
	e.Str(p.CreditTerm)
	e.FieldStart("creditLimit")
	e.Str(p.CreditLimit)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range p.Items {
		it.encode(e)
	}
	e.ArrEnd()
	e.ObjEnd()
}

func (it PayloadItem) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Int64(it.ProductID)
	e.FieldStart("productCode")
	e.Str(it.ProductCode)
	e.FieldStart("productDescription")
	e.Str(it.Description)
	e.FieldStart("productQty")
	encodeDecimal(e, it.Quantity)
	e.FieldStart("productUom")
	e.Str(it.UOM)
	e.FieldStart("productUnitPrice")
	encodeDecimal(e, it.UnitPrice)
	e.FieldStart("productTotal")
	encodeDecimal(e, it.LineTotal)
	e.FieldStart("isDeleted")
	e.Int(0)
	e.FieldStart("isReturn")
	e.Int(0)
	e.FieldStart("orderId")
	e.Int64(it.OrderID)
	e.ObjEnd()
}

// CreateOrder submits a new order. Order creation still lives on the
// legacy unprefixed route.
func (c *Client) CreateOrder(ctx context.Context, p *OrderPayload) (*OrderResult, error) {
	var e jx.Encoder
	p.Encode(&e)

	body, err := c.send(ctx, http.MethodPost, "/order/create", e.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return &OrderResult{ID: createdID(body), Message: errorMessage(body)}, nil
}

// UpdateOrder replaces an existing order.
func (c *Client) UpdateOrder(ctx context.Context, id string, p *OrderPayload) (*OrderResult, error) {
	var e jx.Encoder
	p.Encode(&e)

	body, err := c.send(ctx, http.MethodPut, "/api/order/"+url.PathEscape(id), e.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "update order %s", id)
	}
	return &OrderResult{ID: createdID(body), Message: errorMessage(body)}, nil
}

// GetOrder fetches one order for editing.
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	body, _, err := c.get(ctx, "/api/order/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch order %s", id)
	}

	payload, _ := unwrapData(body)
	d := jx.DecodeBytes(payload)
	if d.Next() != jx.Object {
		return nil, nil
	}
	o, err := decodeOrder(d)
	if err != nil {
		return nil, errors.Wrapf(err, "decode order %s", id)
	}
	return &o, nil
}

// ListOrders fetches a page of orders. The backend does not consistently
// report a total: it may appear under several keys, in the x-total-count
// header, or not at all, in which case the page is sliced client side.
func (c *Client) ListOrders(ctx context.Context, page, limit int) ([]Order, int, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	body, header, err := c.get(ctx, "/order", q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "fetch orders")
	}

	var orders []Order
	err = decodeList(body, func(d *jx.Decoder) error {
		o, err := decodeOrder(d)
		if err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "decode orders")
	}

	total, counted := listTotal(body, header)
	if !counted {
		total = len(orders)
		if page > 0 && limit > 0 {
			start := (page - 1) * limit
			if start >= len(orders) {
				orders = nil
			} else {
				end := min(start+limit, len(orders))
				orders = orders[start:end]
			}
		}
	}
	return orders, total, nil
}

// listTotal looks for a total count in the response body or headers.
func listTotal(body []byte, header http.Header) (int, bool) {
	var (
		total int
		found bool
	)
	d := jx.DecodeBytes(body)
	if d.Next() == jx.Object {
		_ = d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "total", "totalCount", "count":
				n, err := decodeDecimal(d)
				if err != nil {
					return err
				}
				if !found {
					total = int(n.IntPart())
					found = true
				}
				return nil
			default:
				return d.Skip()
			}
		})
	}
	if !found {
		if h := header.Get("x-total-count"); h != "" {
			if v, err := strconv.Atoi(h); err == nil {
				total = v
				found = true
			}
		}
	}
	return total, found
}

func decodeOrder(d *jx.Decoder) (Order, error) {
	var o Order
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "orderId", "id":
			o.ID, err = decodeStr(d)
		case "soNumber", "orderNumber":
			var s string
			s, err = decodeStr(d)
			if o.SONumber == "" {
				o.SONumber = s
			}
		case "date":
			o.Date, err = decodeStr(d)
		case "agentId":
			o.AgentID, err = decodeStr(d)
		case "partnerId":
			o.PartnerID, err = decodeStr(d)
		case "promotionId":
			o.PromotionID, err = decodeStr(d)
		case "contactPerson":
			o.ContactPerson, err = decodeStr(d)
		case "contactPhone":
			o.ContactPhone, err = decodeStr(d)
		case "address":
			o.Address, err = decodeStr(d)
		case "creditTerm":
			o.CreditTerm, err = decodeStr(d)
		case "creditLimit":
			o.CreditLimit, err = decodeStr(d)
		case "remark":
			o.Remark, err = decodeStr(d)
		case "status":
			o.Status, err = decodeStr(d)
		case "orderItems", "items":
			if d.Next() != jx.Array {
				return d.Skip()
			}
			return d.Arr(func(d *jx.Decoder) error {
				it, err := decodeOrderItem(d)
				if err != nil {
					return err
				}
				o.Items = append(o.Items, it)
				return nil
			})
		default:
			return d.Skip()
		}
		return err
	})
	return o, err
}

func decodeOrderItem(d *jx.Decoder) (OrderItem, error) {
	var it OrderItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			it.ProductID, err = decodeStr(d)
		case "productCode":
			it.ProductCode, err = decodeStr(d)
		case "productDescription":
			it.Description, err = decodeStr(d)
		case "productQty":
			it.Quantity, err = decodeDecimal(d)
		case "productUom":
			it.UOM, err = decodeStr(d)
		case "productUnitPrice":
			it.UnitPrice, err = decodeDecimal(d)
		case "productTotal":
			it.LineTotal, err = decodeDecimal(d)
		default:
			return d.Skip()
		}
		return err
	})
	return it, err
}

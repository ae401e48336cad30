package salesapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry used to prefill order lines.
type Product struct {
	ID    string
	Code  string
	Name  string
	Price decimal.Decimal
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Name       string
	Code       string
	CategoryID string
}

// FetchProducts lists a page of the product catalog.
func (c *Client) FetchProducts(ctx context.Context, page, perPage int, filter ProductFilter) ([]Product, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("limit", strconv.Itoa(perPage))
	}
	if filter.Name != "" {
		q.Set("name", filter.Name)
	}
	if filter.Code != "" {
		q.Set("code", filter.Code)
	}
	if filter.CategoryID != "" {
		q.Set("productCategoryId", filter.CategoryID)
	}

	body, _, err := c.get(ctx, "/api/product", q)
	if err != nil {
		return nil, errors.Wrap(err, "fetch products")
	}

	var products []Product
	err = decodeList(body, func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

// PricingEntry is one cell of the price matrix: a product's price for an
// agent group.
type PricingEntry struct {
	ProductID    string
	AgentGroupID string
	Price        decimal.Decimal
}

// FetchPricing loads the pricing matrix inputs: the product list and the
// agent groups the matrix is keyed by.
func (c *Client) FetchPricing(ctx context.Context) ([]Product, []AgentGroup, error) {
	body, _, err := c.get(ctx, "/api/pricing", nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetch pricing")
	}

	var (
		products []Product
		groups   []AgentGroup
	)
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return nil, nil, nil
	}
	err = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "products":
			if d.Next() != jx.Array {
				return d.Skip()
			}
			return d.Arr(func(d *jx.Decoder) error {
				p, err := decodeProduct(d)
				if err != nil {
					return err
				}
				products = append(products, p)
				return nil
			})
		case "agentGroups":
			if d.Next() != jx.Array {
				return d.Skip()
			}
			return d.Arr(func(d *jx.Decoder) error {
				g, err := decodeAgentGroup(d)
				if err != nil {
					return err
				}
				groups = append(groups, g)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "decode pricing")
	}
	return products, groups, nil
}

// UpdatePricings replaces price matrix cells.
func (c *Client) UpdatePricings(ctx context.Context, entries []PricingEntry) error {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("pricings")
	e.ArrStart()
	for _, entry := range entries {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(parseID(entry.ProductID))
		e.FieldStart("agentGroupId")
		e.Int64(parseID(entry.AgentGroupID))
		e.FieldStart("price")
		encodeDecimal(&e, entry.Price)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()

	if _, err := c.send(ctx, http.MethodPut, "/api/pricing/update", e.Bytes()); err != nil {
		return errors.Wrap(err, "update pricings")
	}
	return nil
}

func decodeProduct(d *jx.Decoder) (Product, error) {
	var p Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId", "id":
			p.ID, err = decodeStr(d)
		case "code", "productCode":
			p.Code, err = decodeStr(d)
		case "name", "productName":
			p.Name, err = decodeStr(d)
		case "price":
			p.Price, err = decodeDecimal(d)
		default:
			return d.Skip()
		}
		return err
	})
	return p, err
}

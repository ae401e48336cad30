package salesapi

import (
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/sellkit/orderdesk/internal/pricing"
)

// unwrapData returns the "data" member when body is a {status, data}
// envelope, or body itself when the server responds bare. ok reports
// whether an envelope was found.
func unwrapData(body []byte) (payload []byte, ok bool) {
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return body, false
	}

	var inner []byte
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "data" {
			return d.Skip()
		}
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		inner = []byte(raw)
		return nil
	})
	if err != nil || inner == nil {
		return body, false
	}
	return inner, true
}

// decodeList decodes a list response, tolerating both a bare array and a
// {status, data} envelope. Anything else decodes as an empty list.
func decodeList(body []byte, each func(d *jx.Decoder) error) error {
	payload, _ := unwrapData(body)
	d := jx.DecodeBytes(payload)
	if d.Next() != jx.Array {
		return nil
	}
	return d.Arr(each)
}

// decodeStr reads a value that should be a string but may arrive as a
// number or null. Numbers keep their canonical text form so ids compare
// equal across endpoints.
func decodeStr(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return string(numText(n)), nil
	case jx.Null:
		return "", d.Null()
	default:
		return "", d.Skip()
	}
}

// decodeDecimal reads a numeric value that may arrive as a number, a quoted
// number, null, or garbage. Unparseable input coerces to zero, matching the
// best-effort policy applied to all numeric form data.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		dec, err := decimal.NewFromString(string(numText(n)))
		if err != nil {
			return decimal.Zero, nil
		}
		return dec, nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return pricing.ParseNumber(s), nil
	case jx.Null:
		return decimal.Zero, d.Null()
	default:
		return decimal.Zero, d.Skip()
	}
}

// decodeDecimalPtr is decodeDecimal for optional bounds: null or absent
// stays nil rather than zero.
func decodeDecimalPtr(d *jx.Decoder) (*decimal.Decimal, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	dec, err := decodeDecimal(d)
	if err != nil {
		return nil, err
	}
	return &dec, nil
}

// parseID coerces a captured id to the numeric form the backend expects on
// writes; anything unparseable becomes 0.
func parseID(s string) int64 {
	return pricing.ParseNumber(s).IntPart()
}

// numText strips the quotes from a string-encoded number.
func numText(n jx.Num) []byte {
	b := []byte(n)
	if len(b) >= 2 && b[0] == '"' {
		return b[1 : len(b)-1]
	}
	return b
}

// errorMessage extracts a human-readable message from an error body. The
// backend puts it at the top level or under data, depending on the route.
func errorMessage(body []byte) string {
	var msg string
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return ""
	}
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "message":
			s, err := decodeStr(d)
			if err != nil {
				return err
			}
			if msg == "" {
				msg = s
			}
			return nil
		case "data":
			if d.Next() != jx.Object {
				return d.Skip()
			}
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "message" {
					return d.Skip()
				}
				s, err := decodeStr(d)
				if err != nil {
					return err
				}
				if msg == "" {
					msg = s
				}
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return msg
}

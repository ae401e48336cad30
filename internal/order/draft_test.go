package order

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ToleratesWireShapes(t *testing.T) {
	var got struct {
		A Value `json:"a"`
		B Value `json:"b"`
		C Value `json:"c"`
		D Value `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": "15", "b": 15, "c": null, "d": 9.5}`), &got))

	assert.Equal(t, "15", got.A.String())
	assert.Equal(t, "15", got.B.String(), "numbers keep their text form")
	assert.Equal(t, "", got.C.String())
	assert.True(t, got.D.Decimal().Equal(decimal.NewFromFloat(9.5)))
}

func TestLoadDraft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"agentId": 15,
		"promotionId": "5",
		"date": "2026-06-01",
		"items": [
			{"productId": 7, "productCode": "PC-7", "qty": "10", "uom": "pcs", "unitPrice": 100},
			{"productCode": "PC-8", "qty": 2, "price": "55.50"}
		]
	}`), 0o644))

	d, err := LoadDraft(path)
	require.NoError(t, err)
	assert.Equal(t, "15", d.AgentID.String())
	assert.Equal(t, "5", d.PromotionID.String())
	require.Len(t, d.Items, 2)

	items := d.LineItems()
	assert.True(t, items[0].LineTotal.Equal(decimal.NewFromInt(1000)), "derived from qty and unit price")
	assert.True(t, items[1].LineTotal.Equal(decimal.RequireFromString("55.50")), "explicit price wins")
}

func TestValidate_Warnings(t *testing.T) {
	d := &Draft{
		Items: []DraftItem{
			{Quantity: "12abc", UOM: "crate"},
		},
	}
	warnings := d.Validate()

	assert.NotEmpty(t, warnings)
	joined := ""
	for _, w := range warnings {
		joined += w + "\n"
	}
	assert.Contains(t, joined, "AgentID")
	assert.Contains(t, joined, "oneof")
	assert.Contains(t, joined, "treated as 0")
}

func TestValidate_CleanDraft(t *testing.T) {
	d := &Draft{
		AgentID: "15",
		Items:   []DraftItem{{ProductID: "7", Quantity: "10", UOM: "pcs"}},
	}
	assert.Empty(t, d.Validate())
}

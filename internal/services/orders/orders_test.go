package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"salin-system/internal/apperr"
	"salin-system/internal/database/models"
)

func item(price string, qty int32) ItemInput {
	return ItemInput{
		ProductCode: "PD001",
		ProductName: "Product",
		UnitPrice:   decimal.RequireFromString(price),
		Quantity:    qty,
	}
}

func TestValidateInput(t *testing.T) {
	cases := []struct {
		name    string
		in      CreateInput
		wantErr bool
	}{
		{"valid first order", CreateInput{CustomerID: "c1", OrderType: models.OrderTypeFirst, Items: []ItemInput{item("100", 1)}}, false},
		{"valid continue order", CreateInput{CustomerID: "c1", OrderType: models.OrderTypeContinue, Items: []ItemInput{item("100", 1)}}, false},
		{"empty order type defaults later", CreateInput{CustomerID: "c1", Items: []ItemInput{item("100", 1)}}, false},
		{"missing customer", CreateInput{Items: []ItemInput{item("100", 1)}}, true},
		{"no items", CreateInput{CustomerID: "c1"}, true},
		{"zero quantity", CreateInput{CustomerID: "c1", Items: []ItemInput{item("100", 0)}}, true},
		{"negative quantity", CreateInput{CustomerID: "c1", Items: []ItemInput{item("100", -1)}}, true},
		{"negative price", CreateInput{CustomerID: "c1", Items: []ItemInput{item("-5", 1)}}, true},
		{"free item allowed", CreateInput{CustomerID: "c1", Items: []ItemInput{item("0", 1)}}, false},
		{"unknown order type", CreateInput{CustomerID: "c1", OrderType: "preorder", Items: []ItemInput{item("100", 1)}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateInput(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubtotal(t *testing.T) {
	assert.True(t, Subtotal(nil).IsZero())

	got := Subtotal([]ItemInput{item("199.50", 2), item("0.25", 4)})
	assert.Equal(t, "400.00", got.StringFixed(2))
}

package discount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"salin-system/internal/database/models"
)

func TestDiscountTiers(t *testing.T) {
	cases := []struct {
		name      string
		subtotal  string
		position  string
		orderType string
		want      string
	}{
		{"sag first order", "10000", models.PositionSAG, models.OrderTypeFirst, "6000"},
		{"sag continue order", "10000", models.PositionSAG, models.OrderTypeContinue, "6000"},
		{"sfag", "10000", models.PositionSFAG, models.OrderTypeFirst, "5000"},
		{"ag", "10000", models.PositionAG, models.OrderTypeFirst, "4000"},
		{"bm continue flat rate", "10000", models.PositionBM, models.OrderTypeContinue, "2000"},
		{"bm first below threshold", "10000", models.PositionBM, models.OrderTypeFirst, "0"},
		{"bm first at threshold", "20000", models.PositionBM, models.OrderTypeFirst, "0"},
		{"bm first just above threshold", "20001", models.PositionBM, models.OrderTypeFirst, "0.2"},
		{"bm first well above threshold", "30000", models.PositionBM, models.OrderTypeFirst, "2000"},
		{"unknown position uses first order rule", "30000", "vip", models.OrderTypeContinue, "2000"},
		{"unknown position below threshold", "15000", "", models.OrderTypeFirst, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subtotal := decimal.RequireFromString(tc.subtotal)
			got := Discount(subtotal, tc.position, tc.orderType)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"got %s want %s", got, tc.want)
		})
	}
}

func TestComputeTotalsSAG(t *testing.T) {
	got := ComputeTotals(decimal.NewFromInt(25000), models.PositionSAG, models.OrderTypeFirst)

	assert.Equal(t, Totals{
		Subtotal:       2_500_000,
		Discount:       1_500_000,
		PriceBeforeTax: 1_000_000,
		Tax:            70_000,
		FinalPrice:     1_070_000,
	}, got)
}

func TestComputeTotalsBMFirstOrder(t *testing.T) {
	got := ComputeTotals(decimal.NewFromInt(25000), models.PositionBM, models.OrderTypeFirst)

	assert.Equal(t, Totals{
		Subtotal:       2_500_000,
		Discount:       100_000,
		PriceBeforeTax: 2_400_000,
		Tax:            168_000,
		FinalPrice:     2_568_000,
	}, got)
}

// The persisted fields stay mutually consistent after satang rounding.
func TestComputeTotalsReconciliation(t *testing.T) {
	subtotals := []string{"0", "0.01", "19999.99", "20000.005", "123456.78", "33333.33"}
	positions := []string{models.PositionSAG, models.PositionSFAG, models.PositionAG, models.PositionBM, "unknown"}
	types := []string{models.OrderTypeFirst, models.OrderTypeContinue}

	for _, s := range subtotals {
		for _, pos := range positions {
			for _, ot := range types {
				got := ComputeTotals(decimal.RequireFromString(s), pos, ot)
				assert.Equal(t, got.Subtotal-got.Discount, got.PriceBeforeTax,
					"%s %s %s", s, pos, ot)
				assert.Equal(t, got.PriceBeforeTax+got.Tax, got.FinalPrice,
					"%s %s %s", s, pos, ot)
				assert.GreaterOrEqual(t, got.PriceBeforeTax, int64(0),
					"%s %s %s", s, pos, ot)
			}
		}
	}
}

func TestFromSatang(t *testing.T) {
	assert.Equal(t, "107.50", FromSatang(10750).StringFixed(2))
	assert.Equal(t, "0.00", FromSatang(0).StringFixed(2))
}

// Package discount computes order discounts from the buyer's position tier
// and order type, plus the derived tax and final totals persisted in satang.
package discount

import (
	"github.com/shopspring/decimal"

	"salin-system/internal/database/models"
)

var (
	// BM first orders only discount the portion above 20,000 baht.
	bmThreshold = decimal.NewFromInt(20000)

	rateSAG  = decimal.NewFromFloat(0.60)
	rateSFAG = decimal.NewFromFloat(0.50)
	rateAG   = decimal.NewFromFloat(0.40)
	rateBM   = decimal.NewFromFloat(0.20)

	taxRate = decimal.NewFromFloat(0.07)

	satangPerUnit = decimal.NewFromInt(100)
)

// Discount returns the discount amount in display units for a subtotal in
// display units. Unrecognized positions fall back to the BM first-order rule.
func Discount(subtotal decimal.Decimal, position, orderType string) decimal.Decimal {
	switch position {
	case models.PositionSAG:
		return subtotal.Mul(rateSAG)
	case models.PositionSFAG:
		return subtotal.Mul(rateSFAG)
	case models.PositionAG:
		return subtotal.Mul(rateAG)
	case models.PositionBM:
		if orderType == models.OrderTypeContinue {
			return subtotal.Mul(rateBM)
		}
	}
	// BM first order and any unknown tier: 20% of the excess over the
	// threshold, zero at or below it.
	excess := subtotal.Sub(bmThreshold)
	if excess.Sign() <= 0 {
		return decimal.Zero
	}
	return excess.Mul(rateBM)
}

// Totals holds the persisted satang money fields of an order.
type Totals struct {
	Subtotal       int64
	Discount       int64
	PriceBeforeTax int64
	Tax            int64
	FinalPrice     int64
}

// ComputeTotals derives all persisted money fields from a subtotal in
// display units. Satang rounding happens once per field and the final price
// is kept reconciled as price_before_tax + tax.
func ComputeTotals(subtotal decimal.Decimal, position, orderType string) Totals {
	subtotalSatang := toSatang(subtotal)
	discountSatang := toSatang(Discount(subtotal, position, orderType))
	beforeTaxSatang := subtotalSatang - discountSatang
	taxSatang := decimal.NewFromInt(beforeTaxSatang).Mul(taxRate).Round(0).IntPart()
	return Totals{
		Subtotal:       subtotalSatang,
		Discount:       discountSatang,
		PriceBeforeTax: beforeTaxSatang,
		Tax:            taxSatang,
		FinalPrice:     beforeTaxSatang + taxSatang,
	}
}

func toSatang(d decimal.Decimal) int64 {
	return d.Mul(satangPerUnit).Round(0).IntPart()
}

// FromSatang converts a persisted satang amount to display units.
func FromSatang(v int64) decimal.Decimal {
	return decimal.NewFromInt(v).Div(satangPerUnit)
}

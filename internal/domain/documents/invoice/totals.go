package invoice

import (
	"github.com/shopspring/decimal"

	"custody/internal/core/types"
)

var one = decimal.NewFromInt(1)

// LineAmounts are the intermediate amounts of one line.
// Amount and Net keep full precision; Discount and Tax are rounded to cents.
type LineAmounts struct {
	Amount   types.Money
	Discount types.Money
	Net      types.Money
	Tax      types.Money
}

// Totals are the three invoice aggregates, each rounded once.
type Totals struct {
	Subtotal types.Money
	TaxTotal types.Money
	Total    types.Money
}

// ComputeLine derives the amounts of a single line.
// Missing quantity counts as 1; missing price, discount and tax rate count as 0.
func ComputeLine(l Line) LineAmounts {
	qty := types.OrDefault(l.Quantity, one)
	price := types.OrDefault(l.UnitPrice, decimal.Zero)
	discountRate := types.OrDefault(l.Discount, decimal.Zero)
	taxRate := types.OrDefault(l.TaxRate, decimal.Zero)

	amount := qty.Mul(price)
	discount := types.Percent(amount, discountRate)
	net := amount.Sub(discount)

	return LineAmounts{
		Amount:   amount,
		Discount: discount,
		Net:      net,
		Tax:      types.Percent(net, taxRate),
	}
}

// ComputeTotals sums the lines. An empty list yields zero totals.
func ComputeTotals(lines []Line) Totals {
	netSum := decimal.Zero
	taxSum := decimal.Zero
	for _, l := range lines {
		a := ComputeLine(l)
		netSum = netSum.Add(a.Net)
		taxSum = taxSum.Add(a.Tax)
	}

	subtotal := types.RoundMoney(netSum)
	taxTotal := types.RoundMoney(taxSum)
	return Totals{
		Subtotal: subtotal,
		TaxTotal: taxTotal,
		Total:    types.RoundMoney(subtotal.Add(taxTotal)),
	}
}

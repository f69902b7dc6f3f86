package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"custody/internal/core/types"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(types.MustMoney(s))
}

func assertMoney(t *testing.T, want string, got types.Money) {
	t.Helper()
	assert.Truef(t, types.MustMoney(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestComputeLine_Reference(t *testing.T) {
	a := ComputeLine(Line{Quantity: dec("2"), UnitPrice: dec("100"), Discount: dec("10"), TaxRate: dec("20")})

	assertMoney(t, "200", a.Amount)
	assertMoney(t, "20", a.Discount)
	assertMoney(t, "180", a.Net)
	assertMoney(t, "36", a.Tax)
}

func TestComputeTotals_Reference(t *testing.T) {
	totals := ComputeTotals([]Line{{Quantity: dec("2"), UnitPrice: dec("100"), Discount: dec("10"), TaxRate: dec("20")}})

	assert.Equal(t, "180.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "36.00", totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "216.00", totals.Total.StringFixed(2))
}

func TestComputeTotals_Empty(t *testing.T) {
	for _, lines := range [][]Line{nil, {}} {
		totals := ComputeTotals(lines)
		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.TaxTotal.IsZero())
		assert.True(t, totals.Total.IsZero())
		assert.Equal(t, "0.00", totals.Total.StringFixed(2))
	}
}

func TestComputeLine_Defaults(t *testing.T) {
	// Missing quantity counts as one unit.
	a := ComputeLine(Line{UnitPrice: dec("12.50")})
	assertMoney(t, "12.50", a.Net)
	assert.True(t, a.Tax.IsZero())

	// Nothing set at all.
	a = ComputeLine(Line{})
	assert.True(t, a.Amount.IsZero())
}

func TestComputeLine_RoundsDiscountBeforeSubtraction(t *testing.T) {
	// 3 x 3.35 = 10.05, 5% = 0.5025 -> 0.50, net 9.55, 20% = 1.91
	a := ComputeLine(Line{Quantity: dec("3"), UnitPrice: dec("3.35"), Discount: dec("5"), TaxRate: dec("20")})
	assertMoney(t, "0.50", a.Discount)
	assertMoney(t, "9.55", a.Net)
	assertMoney(t, "1.91", a.Tax)
}

func TestComputeTotals_RoundsTaxPerLine(t *testing.T) {
	// Each line: 0.125 tax -> 0.13 (half-up), so two lines give 0.26, not round(0.25).
	lines := []Line{
		{UnitPrice: dec("0.625"), TaxRate: dec("20")},
		{UnitPrice: dec("0.625"), TaxRate: dec("20")},
	}
	totals := ComputeTotals(lines)
	assertMoney(t, "0.26", totals.TaxTotal)
	assertMoney(t, "1.25", totals.Subtotal)
	assertMoney(t, "1.51", totals.Total)
}

func TestComputeTotals_OrderIndependent(t *testing.T) {
	a := Line{Quantity: dec("1.5"), UnitPrice: dec("19.99"), Discount: dec("7.5"), TaxRate: dec("5.5")}
	b := Line{Quantity: dec("4"), UnitPrice: dec("0.333"), TaxRate: dec("20")}
	c := Line{UnitPrice: dec("1000"), Discount: dec("100"), TaxRate: dec("20")}

	first := ComputeTotals([]Line{a, b, c})
	second := ComputeTotals([]Line{c, a, b})
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
}

func TestRecalculate_Idempotent(t *testing.T) {
	inv := NewInvoice(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	inv.SetLines([]Line{
		{Quantity: dec("3"), UnitPrice: dec("33.333"), Discount: dec("12.5"), TaxRate: dec("20")},
		{Quantity: dec("0.75"), UnitPrice: dec("9.99"), TaxRate: dec("5.5")},
	})

	inv.Recalculate()
	sub, tax, total := inv.Subtotal, inv.TaxTotal, inv.Total
	lineNet := inv.Lines[0].NetAmount

	inv.Recalculate()
	assert.True(t, sub.Equal(inv.Subtotal))
	assert.True(t, tax.Equal(inv.TaxTotal))
	assert.True(t, total.Equal(inv.Total))
	assert.True(t, lineNet.Equal(inv.Lines[0].NetAmount))
}

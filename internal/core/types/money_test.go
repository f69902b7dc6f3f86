package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound_HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"2.675", "2.68"},
		{"-1.005", "-1.01"},
		{"0.125", "0.13"},
		{"10", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Round(MustMoney(tt.in), 2)
			assert.True(t, got.Equal(MustMoney(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestPercent_RoundsOnceAfterExactDivision(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		rate   string
		want   string
	}{
		{"ten percent", "200", "10", "20"},
		{"vat twenty", "180", "20", "36"},
		{"midpoint rounds up", "0.25", "10", "0.03"},
		{"below midpoint", "0.24", "10", "0.02"},
		{"reduced vat", "33.33", "5.5", "1.83"},
		{"zero rate", "123.45", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percent(MustMoney(tt.amount), MustMoney(tt.rate))
			assert.True(t, got.Equal(MustMoney(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestIsPercentage(t *testing.T) {
	assert.True(t, IsPercentage(MustMoney("0")))
	assert.True(t, IsPercentage(MustMoney("100")))
	assert.True(t, IsPercentage(MustMoney("12.5")))
	assert.False(t, IsPercentage(MustMoney("-0.01")))
	assert.False(t, IsPercentage(MustMoney("100.01")))
}

func TestOrDefault(t *testing.T) {
	one := decimal.NewFromInt(1)
	assert.True(t, OrDefault(decimal.NullDecimal{}, one).Equal(one))
	assert.True(t, OrDefault(decimal.NewNullDecimal(MustMoney("3.5")), one).Equal(MustMoney("3.5")))
}

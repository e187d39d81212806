package debt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestFormatPct(t *testing.T) {
	assert.Equal(t, Undefined, FormatPct(nil))
	assert.Equal(t, Undefined, FormatPct(ptr(math.NaN())))
	assert.Equal(t, "12.34%", FormatPct(ptr(0.1234)))
	assert.Equal(t, "-0.50%", FormatPct(ptr(-0.005)))
	assert.Equal(t, "0.00%", FormatPct(ptr(0)))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1,234,568", FormatMoney0(1234567.8))
	assert.Equal(t, "0", FormatMoney0(0))
	assert.Equal(t, "$1,234.50", FormatMoney2(1234.5))
	assert.Equal(t, "-$1,234.50", FormatMoney2(-1234.5))
	assert.Equal(t, "$0.00", FormatMoney2(0))
}

func TestFormatDays(t *testing.T) {
	assert.Equal(t, "", FormatDays(nil))
	assert.Equal(t, "", FormatDays(ptr(math.NaN())))
	assert.Equal(t, "-12", FormatDays(ptr(-12.4)))
	assert.Equal(t, "671", FormatDays(ptr(671)))
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"$1,234.50", "1234.5", true},
		{"−12", "-12", true},
		{"-$1,000", "-1000", true},
		{" 1 234 ", "1234", true},
		{" $5", "5", true},
		{"", "0", false},
		{"$", "0", false},
		{"abc", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMoney(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseMoney_RoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, 999.99, 1234567.89, -42.1} {
		got, ok := ParseMoney(FormatMoney2(v))
		assert.True(t, ok)
		assert.InDelta(t, v, got.InexactFloat64(), 0.005)
	}
}

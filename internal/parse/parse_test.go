package parse

import (
	"math"
	"testing"
	"time"

	"github.com/farxc/purchasing-kpi/internal/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	want := civil.New(2025, time.July, 14)
	for _, in := range []string{
		"2025-07-14",
		"14/07/2025",
		"2025-07-14 00:00:00",
		"2025-07-14T09:30:00",
		"2025-07-14T00:00:00Z",
		"07-14-25",
		"45852",
	} {
		got, err := Date(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestDateRejects(t *testing.T) {
	_, err := Date("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Date("NaT")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Date("next tuesday")
	assert.Error(t, err)
}

func TestAmount(t *testing.T) {
	cases := map[string]string{
		"1286":         "1286",
		"1286.5":       "1286.5",
		"1.286,50":     "1286.5",
		"R$ 2.150,00":  "2150",
		"180,75":       "180.75",
		" 235.00 ":     "235",
		"1.234.567,89": "1234567.89",
		"1,234.56":     "1234.56",
		"1.234,56":     "1234.56",
		"1.234":        "1.234",
		"1,234,567":    "1234567",
		"1.234.567":    "1234567",
		"-1.234,56":    "-1234.56",
		"1000.000000":  "1000",
	}
	for in, want := range cases {
		got, err := Amount(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s: got %s", in, got)
	}

	_, err := Amount("NaN")
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Amount("abc")
	assert.Error(t, err)
}

func TestAmountRejectsAmbiguousSeparators(t *testing.T) {
	for _, in := range []string{"1,234,56", "1.23,4", "1,2.345", "1.234.56", "1,234.567.8", "12345.678,9"} {
		_, err := Amount(in)
		assert.Error(t, err, in)
	}
}

func TestInt(t *testing.T) {
	v, err := Int("122978")
	require.NoError(t, err)
	assert.EqualValues(t, 122978, v)

	v, err = Int("122978.0")
	require.NoError(t, err)
	assert.EqualValues(t, 122978, v)

	_, err = Int("12.5")
	assert.Error(t, err)

	_, err = Int("")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestIntRejectsOutOfRange(t *testing.T) {
	for _, in := range []string{"1e20", "-1e20", "9223372036854775808", "9.3e18"} {
		_, err := Int(in)
		assert.Error(t, err, in)
	}

	v, err := Int("-9223372036854775808")
	require.NoError(t, err)
	assert.EqualValues(t, math.MinInt64, v)
}

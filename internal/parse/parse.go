package parse

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/farxc/purchasing-kpi/internal/civil"
	"github.com/shopspring/decimal"
)

var ErrEmpty = errors.New("empty value")

// Layouts tried in order. Day-first wins over month-first for slashes
// because the upstream sheets are filled in pt-BR.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"02/01/2006 15:04:05",
	"01-02-06",
	"02-01-2006",
}

// Spreadsheet serial day 0, 1900 date system with the leap-year bug folded in.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func isBlank(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NaN", "NaT", "nan", "<nil>", "NA":
		return true
	}
	return false
}

func Date(s string) (civil.Date, error) {
	if isBlank(s) {
		return civil.Date{}, ErrEmpty
	}
	s = strings.TrimSpace(s)

	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return civil.Of(t), nil
		}
	}

	// Serial numbers show up when a sheet is read with raw cell values.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 1 && f < 2958466 {
		days := math.Floor(f)
		return civil.Of(serialEpoch.AddDate(0, 0, int(days))), nil
	}

	return civil.Date{}, errors.New("unrecognised date " + strconv.Quote(s))
}

// Amount parses "1234.56", "1.234,56", "1,234.56", "R$ 1.234,56" and
// "1234,5". When both separators appear the last one is the decimal mark. A
// lone separator is the decimal mark ("1.234" is 1.234, "1,5" is 1.5) and a
// repeated one groups thousands. Anything else is rejected.
func Amount(s string) (decimal.Decimal, error) {
	if isBlank(s) {
		return decimal.Decimal{}, ErrEmpty
	}
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, "\u00a0", "")

	clean, ok := separators(clean)
	if !ok {
		return decimal.Decimal{}, errors.New("ambiguous amount " + strconv.Quote(s))
	}
	return decimal.NewFromString(clean)
}

// separators rewrites s with "." as the decimal mark and no thousands
// separator.
func separators(s string) (string, bool) {
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot < 0 && comma < 0:
		return s, true

	case dot >= 0 && comma >= 0:
		mark, thousands := ",", "."
		if dot > comma {
			mark, thousands = ".", ","
		}
		if strings.Count(s, mark) > 1 {
			return "", false
		}
		i := strings.LastIndex(s, mark)
		if !grouped(s[:i], thousands) {
			return "", false
		}
		return strings.ReplaceAll(s[:i], thousands, "") + "." + s[i+1:], true
	}

	sep := "."
	if comma >= 0 {
		sep = ","
	}
	if strings.Count(s, sep) == 1 {
		return strings.Replace(s, sep, ".", 1), true
	}
	if !grouped(s, sep) {
		return "", false
	}
	return strings.ReplaceAll(s, sep, ""), true
}

// grouped reports whether the integer part s splits by sep into a leading
// group of one to three digits followed by groups of exactly three.
func grouped(s, sep string) bool {
	s = strings.TrimLeft(s, "+-")
	parts := strings.Split(s, sep)
	if len(parts[0]) < 1 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

// Int parses integer cells, tolerating the "123.0" a numeric column
// picks up on its way through a spreadsheet.
func Int(s string) (int64, error) {
	if isBlank(s) {
		return 0, ErrEmpty
	}
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.New("not an integer: " + strconv.Quote(s))
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if f >= 0x1p63 || f < -0x1p63 {
		return 0, errors.New("integer out of range: " + strconv.Quote(s))
	}
	return int64(f), nil
}

// Float is Amount for callers that only need a float64.
func Float(s string) (float64, error) {
	d, err := Amount(s)
	if err != nil {
		return math.NaN(), err
	}
	return d.InexactFloat64(), nil
}

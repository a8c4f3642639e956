package reconcile

import (
	"testing"
	"time"

	"github.com/farxc/purchasing-kpi/internal/civil"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strs(name string, vals ...string) series.Series {
	return series.New(vals, series.String, name)
}

// scFrame lays the SC columns out as the store returns them: ID first, the
// order id at offset 9.
func scFrame(orderHeader string, orders, dates, amounts []string) dataframe.DataFrame {
	n := len(orders)
	fill := func(name string) series.Series {
		return series.New(make([]string, n), series.String, name)
	}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = string(rune('1' + i))
	}
	return dataframe.New(
		strs("ID", ids...),
		strs("Data", dates...),
		fill("Descrição"), fill("Status"), fill("Prioridade"), fill("Solicitante"),
		fill("Departamento"), fill("Categoria"), fill("Data da Compra"),
		strs(orderHeader, orders...),
		fill("TMC"), fill("PMP"),
		strs("Valor", amounts...),
	)
}

func savingFrame(orderHeader string, orders, dates, finals []string) dataframe.DataFrame {
	ids := make([]string, len(orders))
	for i := range ids {
		ids[i] = string(rune('1' + i))
	}
	return dataframe.New(
		strs("ID", ids...),
		strs("Data", dates...),
		strs(orderHeader, orders...),
		strs("Fornecedor", make([]string, len(orders))...),
		strs("VALOR FINAL", finals...),
	)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestValues(t *testing.T) {
	scs := scFrame("Pedido",
		[]string{"100", "200"},
		[]string{"2025-07-01", "2025-07-02"},
		[]string{"1000", "500"},
	)
	savings := savingFrame("Pedido",
		[]string{"100", "200", "300"},
		[]string{"2025-07-01", "2025-07-02", "2025-07-03"},
		[]string{"1000", "480", "90"},
	)

	r := Values(scs, savings)
	require.False(t, r.Skipped)
	assert.Equal(t, map[Status]int{StatusOK: 1, StatusDivergence: 1, StatusUnmatched: 1}, r.Counts)

	require.Len(t, r.Rows[StatusOK], 1)
	ok := r.Rows[StatusOK][0]
	assert.Equal(t, "100", ok.OrderID)
	assert.True(t, ok.Difference.Decimal.IsZero())

	require.Len(t, r.Rows[StatusDivergence], 1)
	div := r.Rows[StatusDivergence][0]
	assert.Equal(t, "200", div.OrderID)
	assert.True(t, div.SCAmount.Decimal.Equal(dec("500")))
	assert.True(t, div.SavingFinalAmount.Decimal.Equal(dec("480")))
	assert.True(t, div.Difference.Decimal.Equal(dec("20")))

	require.Len(t, r.Unmatched, 1)
	assert.Equal(t, "300", r.Unmatched[0].OrderID)
	assert.Equal(t, 2, r.Unmatched[0].Row)
	assert.False(t, r.Unmatched[0].SCAmount.Valid)
	assert.Empty(t, r.Invalid)
}

func TestValuesTolerance(t *testing.T) {
	scs := scFrame("Pedido", []string{"1", "2", "3"}, []string{"", "", ""}, []string{"100,005", "100.02", "99.99"})
	savings := savingFrame("Pedido", []string{"1", "2", "3"}, []string{"", "", ""}, []string{"100", "100", "100"})

	r := Values(scs, savings)
	assert.Equal(t, 2, r.Counts[StatusOK])
	assert.Equal(t, 1, r.Counts[StatusDivergence])
	assert.Equal(t, "2", r.Rows[StatusDivergence][0].OrderID)
	assert.True(t, r.Rows[StatusOK][1].Difference.Decimal.Equal(dec("-0.01")))
}

func TestOrderKeysAreNormalised(t *testing.T) {
	scs := scFrame("Pedido", []string{"100.0", " 200 "}, []string{"", ""}, []string{"1", "2"})
	savings := savingFrame("Pedido", []string{"100", "200.000000"}, []string{"", ""}, []string{"1", "2"})

	r := Values(scs, savings)
	assert.Equal(t, 2, r.Counts[StatusOK])
	assert.Zero(t, r.Counts[StatusUnmatched])
}

func TestBlankOrderIsUnmatched(t *testing.T) {
	scs := scFrame("Pedido", []string{"NaN", "100"}, []string{"", ""}, []string{"5", "1"})
	savings := savingFrame("Pedido", []string{"NaN", ""}, []string{"", ""}, []string{"5", "5"})

	r := Values(scs, savings)
	assert.Equal(t, 2, r.Counts[StatusUnmatched])
	assert.Zero(t, r.Counts[StatusOK])
	assert.Equal(t, "", r.Unmatched[0].OrderID)
}

func TestDuplicateOrderUsesFirstSC(t *testing.T) {
	scs := scFrame("Pedido", []string{"100", "100"}, []string{"", ""}, []string{"1000", "900"})
	savings := savingFrame("Pedido", []string{"100"}, []string{""}, []string{"1000"})

	r := Values(scs, savings)
	assert.Equal(t, 1, r.Counts[StatusOK])
	assert.Zero(t, r.Counts[StatusDivergence])
}

func TestSCRowOrderDoesNotChangeReport(t *testing.T) {
	savings := savingFrame("Pedido",
		[]string{"100", "200", "300"},
		[]string{"2025-07-01", "2025-07-05", "2025-07-03"},
		[]string{"1000", "480", "90"},
	)
	a := scFrame("Pedido", []string{"100", "200"}, []string{"2025-07-01", "2025-07-02"}, []string{"1000", "500"})
	b := scFrame("Pedido", []string{"200", "100"}, []string{"2025-07-02", "2025-07-01"}, []string{"500", "1000"})

	assert.Equal(t, Values(a, savings), Values(b, savings))
	assert.Equal(t, Dates(a, savings), Dates(b, savings))
}

func TestMalformedCellIsInvalid(t *testing.T) {
	scs := scFrame("Pedido", []string{"100", "200"}, []string{"", ""}, []string{"abc", "500"})
	savings := savingFrame("Pedido", []string{"100", "200"}, []string{"", ""}, []string{"1000", "NaN"})

	r := Values(scs, savings)
	assert.Zero(t, r.Counts[StatusOK]+r.Counts[StatusDivergence]+r.Counts[StatusUnmatched])
	require.Len(t, r.Invalid, 2)
	assert.Equal(t, "100", r.Invalid[0].OrderID)
	assert.Contains(t, r.Invalid[0].Reason, "amount in SC's")
	assert.Equal(t, "200", r.Invalid[1].OrderID)
	assert.Contains(t, r.Invalid[1].Reason, "final amount in Saving")
}

func TestPositionalOrderColumns(t *testing.T) {
	scs := scFrame("Nº da SC", []string{"100"}, []string{"2025-07-01"}, []string{"1000"})
	savings := savingFrame("Ordem", []string{"100"}, []string{"2025-07-01"}, []string{"1000"})

	r := Values(scs, savings)
	require.False(t, r.Skipped)
	assert.Equal(t, 1, r.Counts[StatusOK])
}

func TestMissingColumnSkipsOnlyItsAxis(t *testing.T) {
	scs := scFrame("Pedido", []string{"100"}, []string{"2025-07-01"}, []string{"1000"})
	savings := dataframe.New(
		strs("ID", "1"),
		strs("Data", "2025-07-04"),
		strs("Pedido", "100"),
	)

	values := Values(scs, savings)
	assert.True(t, values.Skipped)
	assert.Equal(t, []string{"Final amount in Saving"}, values.Missing)
	assert.Nil(t, values.Counts)

	dates := Dates(scs, savings)
	require.False(t, dates.Skipped)
	assert.Equal(t, 1, dates.Counts[StatusDivergence])
	assert.Equal(t, 3, dates.Rows[StatusDivergence][0].DifferenceDays)
}

func TestMissingOrderColumnsAreListed(t *testing.T) {
	empty := dataframe.New(strs("ID", "1"))
	r := Dates(empty, empty)
	assert.True(t, r.Skipped)
	assert.Equal(t, []string{"Order in Saving", "Date in Saving", "Order in SC's", "Date in SC's"}, r.Missing)
}

func TestDates(t *testing.T) {
	scs := scFrame("Pedido",
		[]string{"100", "200"},
		[]string{"14/07/2025", "2025-07-20"},
		[]string{"1", "1"},
	)
	savings := savingFrame("Pedido",
		[]string{"100", "200", "300"},
		[]string{"2025-07-14", "2025-07-18", "2025-07-01"},
		[]string{"1", "1", "1"},
	)

	r := Dates(scs, savings)
	assert.Equal(t, map[Status]int{StatusOK: 1, StatusDivergence: 1, StatusUnmatched: 1}, r.Counts)

	div := r.Rows[StatusDivergence][0]
	assert.Equal(t, civil.New(2025, time.July, 20), div.SCDate)
	assert.Equal(t, civil.New(2025, time.July, 18), div.SavingDate)
	assert.Equal(t, -2, div.DifferenceDays)

	assert.Equal(t, "300", r.Unmatched[0].OrderID)
	assert.Equal(t, civil.New(2025, time.July, 1), r.Unmatched[0].SavingDate)
}

package reconcile

import (
	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/farxc/purchasing-kpi/internal/parse"
	"github.com/go-gota/gota/dataframe"
	"github.com/shopspring/decimal"
)

// Tolerance is the largest absolute difference still reported as OK.
var Tolerance = decimal.New(1, -2)

// ValueRow compares the SC amount with the final negotiated amount of one
// Saving row. Row is the zero-based Saving row. For unmatched rows only
// Row, OrderID and SavingFinalAmount are set.
type ValueRow struct {
	Row               int                 `json:"row"`
	OrderID           string              `json:"order_id"`
	SCAmount          decimal.NullDecimal `json:"sc_amount"`
	SavingFinalAmount decimal.NullDecimal `json:"saving_final_amount"`
	Difference        decimal.NullDecimal `json:"difference"`
	Status            Status              `json:"status"`
}

func amountAt(df dataframe.DataFrame, col string, row int) (decimal.NullDecimal, error) {
	e := df.Col(col).Elem(row)
	if e.IsNA() {
		return decimal.NullDecimal{}, parse.ErrEmpty
	}
	d, err := parse.Amount(e.String())
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// Values audits sc amount against saving final amount per order. The
// difference is sc minus saving and is OK when its absolute value is within
// Tolerance.
func Values(scs, savings dataframe.DataFrame) Report[ValueRow] {
	sc, sv, missing := resolve(scs, savings, columns.SavingFinalAmount, columns.SCAmount)
	if len(missing) > 0 {
		return Report[ValueRow]{Skipped: true, Missing: missing}
	}
	scAmount := sc.Column(columns.SCAmount)
	finalAmount := sv.Column(columns.SavingFinalAmount)

	r := newReport[ValueRow]()
	for _, p := range join(scs, savings, sc.Column(columns.SCOrderID), sv.Column(columns.SavingOrderID)) {
		final, finalErr := amountAt(savings, finalAmount, p.saving)
		if p.sc < 0 {
			r.add(StatusUnmatched, ValueRow{
				Row:               p.saving,
				OrderID:           p.order,
				SavingFinalAmount: final,
				Status:            StatusUnmatched,
			})
			continue
		}
		if finalErr != nil {
			r.invalid(p.saving, p.order, "final amount in Saving: "+finalErr.Error())
			continue
		}
		amount, err := amountAt(scs, scAmount, p.sc)
		if err != nil {
			r.invalid(p.saving, p.order, "amount in SC's: "+err.Error())
			continue
		}

		diff := amount.Decimal.Sub(final.Decimal)
		status := StatusDivergence
		if diff.Abs().LessThanOrEqual(Tolerance) {
			status = StatusOK
		}
		r.add(status, ValueRow{
			Row:               p.saving,
			OrderID:           p.order,
			SCAmount:          amount,
			SavingFinalAmount: final,
			Difference:        decimal.NewNullDecimal(diff),
			Status:            status,
		})
	}
	return r
}

package reconcile

import (
	"github.com/farxc/purchasing-kpi/internal/civil"
	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/farxc/purchasing-kpi/internal/parse"
	"github.com/go-gota/gota/dataframe"
)

// DateRow compares the SC request date with the Saving date of one order.
// DifferenceDays is saving minus sc; only zero is OK.
type DateRow struct {
	Row            int        `json:"row"`
	OrderID        string     `json:"order_id"`
	SCDate         civil.Date `json:"sc_date"`
	SavingDate     civil.Date `json:"saving_date"`
	DifferenceDays int        `json:"difference_days"`
	Status         Status     `json:"status"`
}

func dateAt(df dataframe.DataFrame, col string, row int) (civil.Date, error) {
	e := df.Col(col).Elem(row)
	if e.IsNA() {
		return civil.Date{}, parse.ErrEmpty
	}
	return parse.Date(e.String())
}

func Dates(scs, savings dataframe.DataFrame) Report[DateRow] {
	sc, sv, missing := resolve(scs, savings, columns.SavingDate, columns.SCRequestDate)
	if len(missing) > 0 {
		return Report[DateRow]{Skipped: true, Missing: missing}
	}
	scDate := sc.Column(columns.SCRequestDate)
	savingDate := sv.Column(columns.SavingDate)

	r := newReport[DateRow]()
	for _, p := range join(scs, savings, sc.Column(columns.SCOrderID), sv.Column(columns.SavingOrderID)) {
		saved, savedErr := dateAt(savings, savingDate, p.saving)
		if p.sc < 0 {
			r.add(StatusUnmatched, DateRow{
				Row:        p.saving,
				OrderID:    p.order,
				SavingDate: saved,
				Status:     StatusUnmatched,
			})
			continue
		}
		if savedErr != nil {
			r.invalid(p.saving, p.order, "date in Saving: "+savedErr.Error())
			continue
		}
		requested, err := dateAt(scs, scDate, p.sc)
		if err != nil {
			r.invalid(p.saving, p.order, "date in SC's: "+err.Error())
			continue
		}

		days := saved.DaysSince(requested)
		status := StatusDivergence
		if days == 0 {
			status = StatusOK
		}
		r.add(status, DateRow{
			Row:            p.saving,
			OrderID:        p.order,
			SCDate:         requested,
			SavingDate:     saved,
			DifferenceDays: days,
			Status:         status,
		})
	}
	return r
}

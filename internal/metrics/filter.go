package metrics

import (
	"strings"

	"github.com/farxc/purchasing-kpi/internal/civil"
	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/farxc/purchasing-kpi/internal/parse"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Filter is the read-time scope of a dashboard query. Zero fields do not
// filter. Start and End are inclusive.
type Filter struct {
	Start civil.Date `json:"start_date"`
	End   civil.Date `json:"end_date"`
	Buyer string     `json:"buyer,omitempty"`
}

func (f Filter) dated() bool {
	return !f.Start.IsZero() || !f.End.IsZero()
}

func (f Filter) inRange(e series.Element) bool {
	if e.IsNA() {
		return false
	}
	d, err := parse.Date(e.String())
	if err != nil {
		return false
	}
	if !f.Start.IsZero() && d.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && d.After(f.End) {
		return false
	}
	return true
}

func (f Filter) sameBuyer(e series.Element) bool {
	return !e.IsNA() && strings.TrimSpace(e.String()) == f.Buyer
}

// Apply returns the rows of df inside the filter as a new frame. Rows whose
// date is NA or unreadable fall outside any date range. When a filtered
// dimension has no column, no row can be shown to match and the result is
// empty; the role label is returned in missing.
func (f Filter) Apply(df dataframe.DataFrame, date, buyer columns.Role) (out dataframe.DataFrame, missing []string) {
	out = df

	if f.dated() {
		name, ok := date.Resolve(df)
		if !ok {
			return none(df), []string{date.Label}
		}
		out = out.Filter(dataframe.F{
			Colname:    name,
			Comparator: series.CompFunc,
			Comparando: f.inRange,
		})
	}

	if f.Buyer != "" {
		name, ok := buyer.Resolve(df)
		if !ok {
			return none(df), []string{buyer.Label}
		}
		out = out.Filter(dataframe.F{
			Colname:    name,
			Comparator: series.CompFunc,
			Comparando: f.sameBuyer,
		})
	}

	return out, nil
}

func (f Filter) SCs(df dataframe.DataFrame) (dataframe.DataFrame, []string) {
	return f.Apply(df, columns.SCRequestDate, columns.SCBuyer)
}

func (f Filter) Savings(df dataframe.DataFrame) (dataframe.DataFrame, []string) {
	return f.Apply(df, columns.SavingDate, columns.SavingBuyer)
}

func none(df dataframe.DataFrame) dataframe.DataFrame {
	names := df.Names()
	if len(names) == 0 {
		return df
	}
	return df.Filter(dataframe.F{
		Colname:    names[0],
		Comparator: series.CompFunc,
		Comparando: func(series.Element) bool { return false },
	})
}

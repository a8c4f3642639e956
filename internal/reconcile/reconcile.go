// Package reconcile audits the Saving sheet against the SC's sheet.
//
// Each Saving row is joined to the SC row with the same order id. When an
// order id repeats in SC's, the first row in table order is used. This
// assumes one SC per order, as the upstream sheets do; whether duplicates
// should be audited against every match is an open product decision.
//
// Positional fallbacks in the roles count from the stored layout, so the
// frames are expected as read back from the store.
package reconcile

import (
	"strconv"
	"strings"

	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/farxc/purchasing-kpi/internal/parse"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

type Status string

const (
	StatusOK         Status = "OK"
	StatusDivergence Status = "DIVERGENCE"
	StatusUnmatched  Status = "UNMATCHED"
)

// Invalid is a matched Saving row whose compared cell, on either side, is
// empty or unreadable. It is kept out of every status count.
type Invalid struct {
	Row     int    `json:"row"`
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// Report is the outcome of one audit axis. When Skipped is set, Missing
// names the roles that could not be resolved and nothing else is filled.
type Report[T any] struct {
	Skipped   bool           `json:"skipped"`
	Missing   []string       `json:"missing,omitempty"`
	Counts    map[Status]int `json:"counts"`
	Rows      map[Status][]T `json:"rows"`
	Unmatched []T            `json:"unmatched"`
	Invalid   []Invalid      `json:"invalid"`
}

func newReport[T any]() Report[T] {
	return Report[T]{
		Counts: map[Status]int{StatusOK: 0, StatusDivergence: 0, StatusUnmatched: 0},
		Rows: map[Status][]T{
			StatusOK:         {},
			StatusDivergence: {},
		},
		Unmatched: []T{},
		Invalid:   []Invalid{},
	}
}

func (r *Report[T]) add(status Status, row T) {
	r.Counts[status]++
	if status == StatusUnmatched {
		r.Unmatched = append(r.Unmatched, row)
		return
	}
	r.Rows[status] = append(r.Rows[status], row)
}

func (r *Report[T]) invalid(row int, order, reason string) {
	r.Invalid = append(r.Invalid, Invalid{Row: row, OrderID: order, Reason: reason})
}

// pair is one Saving row and the SC row it joined to, or sc < 0.
type pair struct {
	saving int
	sc     int
	order  string
}

func orderKey(e series.Element) (string, bool) {
	if e.IsNA() {
		return "", false
	}
	s := strings.TrimSpace(e.String())
	if s == "" {
		return "", false
	}
	// "100", 100 and 100.0 are the same order.
	if n, err := parse.Int(s); err == nil {
		return strconv.FormatInt(n, 10), true
	}
	return s, true
}

// join resolves both order columns by role and pairs every Saving row with
// the first SC row carrying the same key.
func join(scs, savings dataframe.DataFrame, scOrder, savingOrder string) []pair {
	scKeys := scs.Col(scOrder)
	first := make(map[string]int, scKeys.Len())
	for i := 0; i < scKeys.Len(); i++ {
		k, ok := orderKey(scKeys.Elem(i))
		if !ok {
			continue
		}
		if _, seen := first[k]; !seen {
			first[k] = i
		}
	}

	savingKeys := savings.Col(savingOrder)
	pairs := make([]pair, savingKeys.Len())
	for i := range pairs {
		pairs[i] = pair{saving: i, sc: -1}
		k, ok := orderKey(savingKeys.Elem(i))
		if !ok {
			continue
		}
		pairs[i].order = k
		if j, found := first[k]; found {
			pairs[i].sc = j
		}
	}
	return pairs
}

// resolve looks up the order and compared roles on both sides. The missing
// labels come Saving first, as the audits report them.
func resolve(scs, savings dataframe.DataFrame, savingValue, scValue columns.Role) (sc, sv columns.Resolution, missing []string) {
	sv = columns.Lookup(savings, columns.SavingOrderID, savingValue)
	sc = columns.Lookup(scs, columns.SCOrderID, scValue)
	return sc, sv, columns.Merge(sv.Missing, sc.Missing)
}

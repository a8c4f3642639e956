// Package metrics computes the purchasing KPIs over SC's and Saving frames.
//
// Every function takes the frame it is given as the scope: narrow it with
// Filter first. Frames are never modified. A column that cannot be resolved
// is reported in Missing and the computation returns no groups; a cell that
// is NA or does not parse is skipped and counted.
package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/farxc/purchasing-kpi/internal/parse"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

type Kind string

const (
	KindSum          Kind = "sum"
	KindMean         Kind = "mean"
	KindWeightedMean Kind = "weighted_mean"
	KindCount        Kind = "count"
)

var ErrUnknownKind = errors.New("unknown aggregation kind")

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSum, KindMean, KindWeightedMean, KindCount:
		return k, nil
	case "":
		return KindSum, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Means are reported with this many decimal places.
const meanPlaces = 10

// Request describes one aggregation. A zero GroupBy puts every row in a
// single group with an empty key. Weight is only read by KindWeightedMean
// and Value is not read by KindCount.
type Request struct {
	GroupBy columns.Role
	Value   columns.Role
	Weight  columns.Role
	Kind    Kind
}

type GroupValue struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
	// Undefined marks a weighted mean whose weights sum to zero. Value is
	// zero and is written as null.
	Undefined bool `json:"undefined,omitempty"`
}

func (g GroupValue) MarshalJSON() ([]byte, error) {
	type plain GroupValue
	return json.Marshal(struct {
		plain
		Value decimal.NullDecimal `json:"value"`
	}{
		plain: plain(g),
		Value: decimal.NullDecimal{Decimal: g.Value, Valid: !g.Undefined},
	})
}

type Aggregation struct {
	Kind    Kind         `json:"kind"`
	Groups  []GroupValue `json:"groups"`
	Skipped int          `json:"skipped"`
	Missing []string     `json:"missing,omitempty"`
}

// Total is the sum of every group value.
func (a Aggregation) Total() decimal.Decimal {
	total := decimal.Zero
	for _, g := range a.Groups {
		total = total.Add(g.Value)
	}
	return total
}

type accumulator struct {
	sum     decimal.Decimal
	weight  decimal.Decimal
	values  []float64
	weights []float64
	count   int
}

func (a *accumulator) add(v, w decimal.Decimal) {
	a.count++
	a.sum = a.sum.Add(v)
	a.weight = a.weight.Add(w)
	a.values = append(a.values, v.InexactFloat64())
	a.weights = append(a.weights, w.InexactFloat64())
}

func (a *accumulator) result(kind Kind) (decimal.Decimal, bool) {
	switch kind {
	case KindSum:
		return a.sum, false
	case KindCount:
		return decimal.NewFromInt(int64(a.count)), false
	case KindMean:
		return mean(stat.Mean(a.values, nil)), false
	case KindWeightedMean:
		if a.weight.IsZero() {
			return decimal.Zero, true
		}
		m := stat.Mean(a.values, a.weights)
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return decimal.Zero, true
		}
		return mean(m), false
	}
	return decimal.Zero, true
}

func mean(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(meanPlaces)
}

// Aggregate groups df by req.GroupBy and reduces req.Value per group.
// Groups are sorted by key. The only error is ErrUnknownKind.
func Aggregate(df dataframe.DataFrame, req Request) (Aggregation, error) {
	switch req.Kind {
	case KindSum, KindMean, KindWeightedMean, KindCount:
	default:
		return Aggregation{}, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}

	out := Aggregation{Kind: req.Kind}

	grouped := req.GroupBy.Label != ""
	weighted := req.Kind == KindWeightedMean

	var roles []columns.Role
	if grouped {
		roles = append(roles, req.GroupBy)
	}
	if req.Kind != KindCount {
		roles = append(roles, req.Value)
	}
	if weighted {
		roles = append(roles, req.Weight)
	}

	res := columns.Lookup(df, roles...)
	if !res.OK() {
		out.Missing = res.Missing
		return out, nil
	}

	var keys, values, weights series.Series
	if grouped {
		keys = df.Col(res.Column(req.GroupBy))
	}
	if req.Kind != KindCount {
		values = df.Col(res.Column(req.Value))
	}
	if weighted {
		weights = df.Col(res.Column(req.Weight))
	}

	acc := make(map[string]*accumulator)
	for i := 0; i < df.Nrow(); i++ {
		k := ""
		if grouped {
			var ok bool
			if k, ok = key(keys.Elem(i)); !ok {
				out.Skipped++
				continue
			}
		}

		v := decimal.Zero
		if req.Kind != KindCount {
			var err error
			if v, err = number(values.Elem(i)); err != nil {
				out.Skipped++
				continue
			}
		}

		w := decimal.Zero
		if weighted {
			var err error
			if w, err = number(weights.Elem(i)); err != nil {
				out.Skipped++
				continue
			}
		}

		a, ok := acc[k]
		if !ok {
			a = &accumulator{}
			acc[k] = a
		}
		a.add(v, w)
	}

	out.Groups = make([]GroupValue, 0, len(acc))
	for k, a := range acc {
		v, undefined := a.result(req.Kind)
		out.Groups = append(out.Groups, GroupValue{Key: k, Value: v, Count: a.count, Undefined: undefined})
	}
	sort.Slice(out.Groups, func(i, j int) bool { return out.Groups[i].Key < out.Groups[j].Key })

	return out, nil
}

// TopN sums value per group and keeps the n largest, ties broken by key.
// n <= 0 keeps every group.
func TopN(df dataframe.DataFrame, groupBy, value columns.Role, n int) Aggregation {
	agg, _ := Aggregate(df, Request{GroupBy: groupBy, Value: value, Kind: KindSum})
	sortDescending(agg.Groups)
	if n > 0 && len(agg.Groups) > n {
		agg.Groups = agg.Groups[:n]
	}
	return agg
}

func sortDescending(groups []GroupValue) {
	sort.SliceStable(groups, func(i, j int) bool {
		if c := groups[i].Value.Cmp(groups[j].Value); c != 0 {
			return c > 0
		}
		return groups[i].Key < groups[j].Key
	})
}

// Overall is one group holding every row of the frame.
func (a Aggregation) Overall() (GroupValue, bool) {
	if len(a.Groups) != 1 || a.Groups[0].Key != "" {
		return GroupValue{}, false
	}
	return a.Groups[0], true
}

func key(e series.Element) (string, bool) {
	if e.IsNA() {
		return "", false
	}
	k := strings.TrimSpace(e.String())
	return k, k != ""
}

func number(e series.Element) (decimal.Decimal, error) {
	if e.IsNA() {
		return decimal.Zero, parse.ErrEmpty
	}
	return parse.Amount(e.String())
}

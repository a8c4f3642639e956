package metrics

import (
	"sort"

	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/go-gota/gota/dataframe"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOK     Status = "OK"
	StatusNoData Status = "NO_DATA"
)

var hundred = decimal.NewFromInt(100)

// Ratio is savings over spend in percent. Percent is only meaningful when
// Status is StatusOK.
type Ratio struct {
	Status  Status          `json:"status"`
	Percent decimal.Decimal `json:"percent"`
	Savings decimal.Decimal `json:"savings"`
	Spend   decimal.Decimal `json:"spend"`
	Missing []string        `json:"missing,omitempty"`
}

func ratio(savings, spend decimal.Decimal) Ratio {
	r := Ratio{Status: StatusNoData, Savings: savings, Spend: spend}
	if spend.IsZero() {
		return r
	}
	r.Status = StatusOK
	r.Percent = savings.Div(spend).Mul(hundred)
	return r
}

// SavingsRatio divides total reduction in savings by total amount in scs.
// Both frames are expected in the same filter scope. An empty Saving frame,
// a Saving frame with no readable reduction or a zero spend is
// StatusNoData.
func SavingsRatio(scs, savings dataframe.DataFrame) Ratio {
	spend, _ := Aggregate(scs, Request{Value: columns.SCAmount, Kind: KindSum})
	saved, _ := Aggregate(savings, Request{Value: columns.SavingReduction, Kind: KindSum})

	if missing := columns.Merge(saved.Missing, spend.Missing); len(missing) > 0 {
		return Ratio{Status: StatusNoData, Missing: missing}
	}

	total, ok := saved.Overall()
	if !ok {
		return Ratio{Status: StatusNoData, Spend: spend.Total()}
	}
	return ratio(total.Value, spend.Total())
}

type BuyerRatio struct {
	Buyer string `json:"buyer"`
	Ratio
}

type BuyerRatios struct {
	Buyers  []BuyerRatio `json:"buyers"`
	Missing []string     `json:"missing,omitempty"`
}

// SavingsRatioByBuyer computes the ratio for each buyer present in both
// frames, highest percent first. Buyers with zero spend sort last.
func SavingsRatioByBuyer(scs, savings dataframe.DataFrame) BuyerRatios {
	spend, _ := Aggregate(scs, Request{GroupBy: columns.SCBuyer, Value: columns.SCAmount, Kind: KindSum})
	saved, _ := Aggregate(savings, Request{GroupBy: columns.SavingBuyer, Value: columns.SavingReduction, Kind: KindSum})

	if missing := columns.Merge(saved.Missing, spend.Missing); len(missing) > 0 {
		return BuyerRatios{Missing: missing}
	}

	spendBy := make(map[string]decimal.Decimal, len(spend.Groups))
	for _, g := range spend.Groups {
		spendBy[g.Key] = g.Value
	}

	out := BuyerRatios{Buyers: []BuyerRatio{}}
	for _, g := range saved.Groups {
		s, ok := spendBy[g.Key]
		if !ok {
			continue
		}
		out.Buyers = append(out.Buyers, BuyerRatio{Buyer: g.Key, Ratio: ratio(g.Value, s)})
	}

	sort.SliceStable(out.Buyers, func(i, j int) bool {
		a, b := out.Buyers[i], out.Buyers[j]
		if a.Status != b.Status {
			return a.Status == StatusOK
		}
		if c := a.Percent.Cmp(b.Percent); c != 0 {
			return c > 0
		}
		return a.Buyer < b.Buyer
	})
	return out
}

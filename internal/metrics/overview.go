package metrics

import (
	"strings"

	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
)

const (
	topSuppliers       = 5
	topCategories      = 5
	productCategories  = 10
	productsInCategory = 5
)

// Overview is every dashboard section over one filtered pair of frames.
// Each section carries its own Missing so one absent column only blanks
// the sections that need it.
type Overview struct {
	SpendByBuyer    Aggregation       `json:"spend_by_buyer"`
	LeadTimeByBuyer Aggregation       `json:"tmc_by_buyer"`
	LeadTime        Aggregation       `json:"tmc"`
	PaymentByBuyer  Aggregation       `json:"pmps_by_buyer"`
	Payment         Aggregation       `json:"pmps"`
	WeightedByBuyer Aggregation       `json:"pmpp_by_buyer"`
	Weighted        Aggregation       `json:"pmpp"`
	TopSuppliers    Aggregation       `json:"top_suppliers"`
	TopCategories   Aggregation       `json:"top_categories"`
	PriorityCount   Aggregation       `json:"priority_count"`
	PriorityValue   Aggregation       `json:"priority_value"`
	SavingsByBuyer  Aggregation       `json:"savings_by_buyer"`
	SavingsRatios   BuyerRatios       `json:"savings_ratio_by_buyer"`
	Summary         Summary           `json:"summary"`
	TopProducts     CategoryBreakdown `json:"top_products"`
}

type Summary struct {
	Orders           int      `json:"orders"`
	Suppliers        int      `json:"suppliers"`
	SavingsRatio     Ratio    `json:"savings_ratio"`
	OrdersWithSaving int      `json:"orders_with_saving"`
	Missing          []string `json:"missing,omitempty"`
}

type ProductShare struct {
	Product string          `json:"product"`
	Total   decimal.Decimal `json:"total"`
	Orders  int             `json:"orders"`
	// Percent of the category total, one decimal place. Null when the
	// category total is zero.
	Share decimal.NullDecimal `json:"share"`
}

type CategoryProducts struct {
	Category       string          `json:"category"`
	Total          decimal.Decimal `json:"total"`
	UniqueProducts int             `json:"unique_products"`
	Products       []ProductShare  `json:"products"`
	// Share of the category covered by Products.
	TopShare decimal.NullDecimal `json:"top_share"`
	// Undefined marks a category whose total is zero, so no share exists.
	Undefined bool `json:"undefined,omitempty"`
}

type CategoryBreakdown struct {
	Categories []CategoryProducts `json:"categories"`
	Missing    []string           `json:"missing,omitempty"`
}

func must(a Aggregation, err error) Aggregation {
	if err != nil {
		// Kinds below are constants, so this is a programming error.
		panic(err)
	}
	return a
}

// Summarize builds every section of Overview from frames already narrowed
// by the caller's Filter.
func Summarize(scs, savings dataframe.DataFrame) Overview {
	var all columns.Role

	o := Overview{
		SpendByBuyer:    must(Aggregate(scs, Request{GroupBy: columns.SCBuyer, Value: columns.SCAmount, Kind: KindSum})),
		LeadTimeByBuyer: must(Aggregate(scs, Request{GroupBy: columns.SCBuyer, Value: columns.SCLeadTime, Kind: KindMean})),
		LeadTime:        must(Aggregate(scs, Request{GroupBy: all, Value: columns.SCLeadTime, Kind: KindMean})),
		PaymentByBuyer:  must(Aggregate(scs, Request{GroupBy: columns.SCBuyer, Value: columns.SCPaymentTerm, Kind: KindMean})),
		Payment:         must(Aggregate(scs, Request{GroupBy: all, Value: columns.SCPaymentTerm, Kind: KindMean})),
		WeightedByBuyer: must(Aggregate(scs, Request{
			GroupBy: columns.SCBuyer, Value: columns.SCPaymentTerm, Weight: columns.SCAmount, Kind: KindWeightedMean,
		})),
		Weighted: must(Aggregate(scs, Request{
			GroupBy: all, Value: columns.SCPaymentTerm, Weight: columns.SCAmount, Kind: KindWeightedMean,
		})),
		TopSuppliers:     TopN(scs, columns.SCSupplier, columns.SCAmount, topSuppliers),
		TopCategories:    TopN(scs, columns.SCCategory, columns.SCAmount, topCategories),
		PriorityCount:    must(Aggregate(scs, Request{GroupBy: columns.SCPriority, Kind: KindCount})),
		PriorityValue:    TopN(scs, columns.SCPriority, columns.SCAmount, 0),
		SavingsByBuyer:   must(Aggregate(savings, Request{GroupBy: columns.SavingBuyer, Value: columns.SavingReduction, Kind: KindSum})),
		SavingsRatios:    SavingsRatioByBuyer(scs, savings),
		Summary:          summarize(scs, savings),
		TopProducts:      TopProductsByCategory(scs, productCategories, productsInCategory),
	}
	sortDescending(o.PriorityCount.Groups)
	return o
}

func summarize(scs, savings dataframe.DataFrame) Summary {
	s := Summary{
		Orders:           scs.Nrow(),
		SavingsRatio:     SavingsRatio(scs, savings),
		OrdersWithSaving: savings.Nrow(),
	}

	name, ok := columns.SCSupplier.Resolve(scs)
	if !ok {
		s.Missing = []string{columns.SCSupplier.Label}
		return s
	}
	s.Suppliers = distinct(scs.Col(name))
	return s
}

func distinct(s series.Series) int {
	seen := make(map[string]struct{})
	for i := 0; i < s.Len(); i++ {
		if k, ok := key(s.Elem(i)); ok {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

// TopProductsByCategory ranks the top categories by spend and, inside each,
// the top products by spend with their share of the category.
func TopProductsByCategory(scs dataframe.DataFrame, categories, products int) CategoryBreakdown {
	res := columns.Lookup(scs, columns.SCCategory, columns.SCDescription, columns.SCAmount)
	if !res.OK() {
		return CategoryBreakdown{Missing: res.Missing}
	}
	categoryCol := res.Column(columns.SCCategory)
	descriptionCol := res.Column(columns.SCDescription)

	top := TopN(scs, columns.SCCategory, columns.SCAmount, categories)

	out := CategoryBreakdown{Categories: make([]CategoryProducts, 0, len(top.Groups))}
	for _, cat := range top.Groups {
		name := cat.Key
		rows := scs.Filter(dataframe.F{
			Colname:    categoryCol,
			Comparator: series.CompFunc,
			Comparando: func(e series.Element) bool {
				return !e.IsNA() && strings.TrimSpace(e.String()) == name
			},
		})

		entry := CategoryProducts{
			Category:       name,
			Total:          cat.Value,
			UniqueProducts: distinct(rows.Col(descriptionCol)),
			Products:       []ProductShare{},
			Undefined:      cat.Value.IsZero(),
		}
		entry.TopShare = decimal.NullDecimal{Decimal: decimal.Zero, Valid: !entry.Undefined}

		for _, p := range TopN(rows, columns.SCDescription, columns.SCAmount, products).Groups {
			product := ProductShare{
				Product: p.Key,
				Total:   p.Value,
				Orders:  p.Count,
			}
			if !entry.Undefined {
				share := p.Value.Div(cat.Value).Mul(hundred).Round(1)
				product.Share = decimal.NewNullDecimal(share)
				entry.TopShare.Decimal = entry.TopShare.Decimal.Add(share)
			}
			entry.Products = append(entry.Products, product)
		}
		out.Categories = append(out.Categories, entry)
	}
	return out
}

package main

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/farxc/purchasing-kpi/internal/civil"
	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/farxc/purchasing-kpi/internal/ingest"
	"github.com/farxc/purchasing-kpi/internal/metrics"
	"github.com/go-gota/gota/dataframe"
)

const (
	tableSCs     = "scs"
	tableSavings = "savings"
)

// roleKeys maps the group_by, value and weight query values to roles.
var roleKeys = map[string]map[string]columns.Role{
	tableSCs: {
		"date":          columns.SCRequestDate,
		"description":   columns.SCDescription,
		"status":        columns.SCStatus,
		"priority":      columns.SCPriority,
		"requester":     columns.SCRequester,
		"department":    columns.SCDepartment,
		"category":      columns.SCCategory,
		"purchase_date": columns.SCPurchaseDate,
		"order":         columns.SCOrderID,
		"lead_time":     columns.SCLeadTime,
		"payment_term":  columns.SCPaymentTerm,
		"amount":        columns.SCAmount,
		"supplier":      columns.SCSupplier,
		"buyer":         columns.SCBuyer,
	},
	tableSavings: {
		"date":              columns.SavingDate,
		"order":             columns.SavingOrderID,
		"supplier":          columns.SavingSupplier,
		"initial_amount":    columns.SavingInitialAmount,
		"final_amount":      columns.SavingFinalAmount,
		"reduction":         columns.SavingReduction,
		"reduction_percent": columns.SavingReductionPercent,
		"saving_type":       columns.SavingType,
		"buyer":             columns.SavingBuyer,
	},
}

func parseTable(s string) (string, error) {
	switch s {
	case "", tableSCs:
		return tableSCs, nil
	case tableSavings:
		return tableSavings, nil
	}
	return "", fmt.Errorf("invalid table %q (scs or savings expected)", s)
}

// parseRole resolves a key of roleKeys. An empty key is the zero Role,
// which Aggregate reads as "no grouping".
func parseRole(table, param, key string) (columns.Role, error) {
	if key == "" {
		return columns.Role{}, nil
	}
	if role, ok := roleKeys[table][key]; ok {
		return role, nil
	}
	keys := make([]string, 0, len(roleKeys[table]))
	for k := range roleKeys[table] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return columns.Role{}, fmt.Errorf("invalid %s %q for %s (one of %s)", param, key, table, strings.Join(keys, ", "))
}

func parseDate(param, s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	d, err := civil.Parse(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid %s format (YYYY-MM-DD expected)", param)
	}
	return d, nil
}

func parseFilter(r *http.Request) (metrics.Filter, error) {
	q := r.URL.Query()

	start, err := parseDate("start_date", q.Get("start_date"))
	if err != nil {
		return metrics.Filter{}, err
	}
	end, err := parseDate("end_date", q.Get("end_date"))
	if err != nil {
		return metrics.Filter{}, err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return metrics.Filter{}, fmt.Errorf("end_date is before start_date")
	}

	return metrics.Filter{Start: start, End: end, Buyer: strings.TrimSpace(q.Get("buyer"))}, nil
}

func parseLimit(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid n %q", s)
	}
	return n, nil
}

// view is the current dataset narrowed to a request's filter.
type view struct {
	tables  *ingest.Tables
	filter  metrics.Filter
	scs     dataframe.DataFrame
	savings dataframe.DataFrame
	missing []string
}

func (v view) frame(table string) dataframe.DataFrame {
	if table == tableSavings {
		return v.savings
	}
	return v.scs
}

// currentView loads the dataset and applies the request filter. It writes the
// error response itself and returns false when the handler should stop.
func (app *application) currentView(w http.ResponseWriter, r *http.Request) (view, bool) {
	filter, err := parseFilter(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return view{}, false
	}

	tables, err := app.dataset.Current(r.Context())
	if err != nil {
		app.writeDatasetError(w, err)
		return view{}, false
	}

	scs, scMissing := filter.SCs(tables.SCs)
	savings, savingMissing := filter.Savings(tables.Savings)
	return view{
		tables:  tables,
		filter:  filter,
		scs:     scs,
		savings: savings,
		missing: columns.Merge(scMissing, savingMissing),
	}, true
}

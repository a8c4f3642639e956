package main

import (
	"errors"
	"net/http"

	"github.com/farxc/purchasing-kpi/internal/metrics"
	"github.com/farxc/purchasing-kpi/internal/response"
)

type GetAggregateResponse = response.APIResponse[metrics.Aggregation]
type GetSavingsRatioResponse = response.APIResponse[SavingsRatio]
type GetOverviewResponse = response.APIResponse[metrics.Overview]

type SavingsRatio struct {
	Overall metrics.Ratio       `json:"overall"`
	ByBuyer metrics.BuyerRatios `json:"by_buyer"`
	Filter  metrics.Filter      `json:"filter"`
}

func (v view) reply(data any, message string) any {
	return &response.APIResponse[any]{
		Success: true,
		Message: message,
		Dataset: &v.tables.Snapshot,
		Missing: v.missing,
		Data:    data,
	}
}

// @Summary		Aggregate a column
// @Description	Sum, mean, weighted mean or count of a column, optionally grouped, over the filtered dataset.
// @Tags			Metrics
// @Produce		json
// @Param			table		query		string					false	"scs or savings"	default(scs)
// @Param			group_by	query		string					false	"Column key to group by"
// @Param			value		query		string					false	"Column key to aggregate"
// @Param			weight		query		string					false	"Column key of the weights (weighted_mean)"
// @Param			kind		query		string					false	"sum, mean, weighted_mean or count"	default(sum)
// @Param			start_date	query		string					false	"Start date (YYYY-MM-DD)"
// @Param			end_date	query		string					false	"End date (YYYY-MM-DD)"
// @Param			buyer		query		string					false	"Buyer"
// @Success		200			{object}	GetAggregateResponse	"Successfully aggregated"
// @Failure		400			{object}	response.ErrorResponse	"Invalid parameters"
// @Failure		404			{object}	response.ErrorResponse	"No dataset ingested"
// @Router			/metrics/aggregate [get]
func (app *application) handleGetAggregate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	table, err := parseTable(q.Get("table"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	kind, err := metrics.ParseKind(q.Get("kind"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req metrics.Request
	req.Kind = kind
	if req.GroupBy, err = parseRole(table, "group_by", q.Get("group_by")); err == nil {
		if req.Value, err = parseRole(table, "value", q.Get("value")); err == nil {
			req.Weight, err = parseRole(table, "weight", q.Get("weight"))
		}
	}
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if kind != metrics.KindCount && req.Value.Label == "" {
		writeJSONError(w, http.StatusBadRequest, "value is required for "+string(kind))
		return
	}
	if kind == metrics.KindWeightedMean && req.Weight.Label == "" {
		writeJSONError(w, http.StatusBadRequest, "weight is required for weighted_mean")
		return
	}

	v, ok := app.currentView(w, r)
	if !ok {
		return
	}

	agg, err := metrics.Aggregate(v.frame(table), req)
	if err != nil {
		if errors.Is(err, metrics.ErrUnknownKind) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to aggregate: "+err.Error())
		return
	}

	app.respond(w, http.StatusOK, v.reply(agg, "Successfully aggregated "+table))
}

// @Summary		Top groups by value
// @Description	Groups of the filtered dataset ranked by the sum of a column, largest first.
// @Tags			Metrics
// @Produce		json
// @Param			table		query		string					false	"scs or savings"	default(scs)
// @Param			group_by	query		string					true	"Column key to group by"
// @Param			value		query		string					false	"Column key to sum"	default(amount)
// @Param			n			query		int						false	"Number of groups, 0 for all"	default(5)
// @Param			start_date	query		string					false	"Start date (YYYY-MM-DD)"
// @Param			end_date	query		string					false	"End date (YYYY-MM-DD)"
// @Param			buyer		query		string					false	"Buyer"
// @Success		200			{object}	GetAggregateResponse	"Successfully ranked"
// @Failure		400			{object}	response.ErrorResponse	"Invalid parameters"
// @Failure		404			{object}	response.ErrorResponse	"No dataset ingested"
// @Router			/metrics/top [get]
func (app *application) handleGetTop(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	table, err := parseTable(q.Get("table"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if q.Get("group_by") == "" {
		writeJSONError(w, http.StatusBadRequest, "group_by is required")
		return
	}
	groupBy, err := parseRole(table, "group_by", q.Get("group_by"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	valueKey := q.Get("value")
	if valueKey == "" {
		valueKey = "amount"
		if table == tableSavings {
			valueKey = "reduction"
		}
	}
	value, err := parseRole(table, "value", valueKey)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := parseLimit(q.Get("n"), 5)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, ok := app.currentView(w, r)
	if !ok {
		return
	}

	top := metrics.TopN(v.frame(table), groupBy, value, n)
	app.respond(w, http.StatusOK, v.reply(top, "Successfully ranked "+table))
}

// @Summary		Savings ratio
// @Description	Total savings over total spend, overall and per buyer, over the filtered dataset.
// @Tags			Metrics
// @Produce		json
// @Param			start_date	query		string					false	"Start date (YYYY-MM-DD)"
// @Param			end_date	query		string					false	"End date (YYYY-MM-DD)"
// @Param			buyer		query		string					false	"Buyer"
// @Success		200			{object}	GetSavingsRatioResponse	"Successfully computed savings ratio"
// @Failure		400			{object}	response.ErrorResponse	"Invalid parameters"
// @Failure		404			{object}	response.ErrorResponse	"No dataset ingested"
// @Router			/metrics/savings-ratio [get]
func (app *application) handleGetSavingsRatio(w http.ResponseWriter, r *http.Request) {
	v, ok := app.currentView(w, r)
	if !ok {
		return
	}

	data := SavingsRatio{
		Overall: metrics.SavingsRatio(v.scs, v.savings),
		ByBuyer: metrics.SavingsRatioByBuyer(v.scs, v.savings),
		Filter:  v.filter,
	}
	app.respond(w, http.StatusOK, v.reply(data, "Successfully computed savings ratio"))
}

// @Summary		Dashboard overview
// @Description	Every dashboard section over the filtered dataset. Sections whose columns are missing carry their own missing list.
// @Tags			Metrics
// @Produce		json
// @Param			start_date	query		string					false	"Start date (YYYY-MM-DD)"
// @Param			end_date	query		string					false	"End date (YYYY-MM-DD)"
// @Param			buyer		query		string					false	"Buyer"
// @Success		200			{object}	GetOverviewResponse		"Successfully computed overview"
// @Failure		400			{object}	response.ErrorResponse	"Invalid parameters"
// @Failure		404			{object}	response.ErrorResponse	"No dataset ingested"
// @Router			/metrics/overview [get]
func (app *application) handleGetOverview(w http.ResponseWriter, r *http.Request) {
	v, ok := app.currentView(w, r)
	if !ok {
		return
	}

	app.respond(w, http.StatusOK, v.reply(metrics.Summarize(v.scs, v.savings), "Successfully computed overview"))
}

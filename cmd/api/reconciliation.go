package main

import (
	"net/http"

	"github.com/farxc/purchasing-kpi/internal/reconcile"
	"github.com/farxc/purchasing-kpi/internal/response"
)

type GetValueAuditResponse = response.APIResponse[reconcile.Report[reconcile.ValueRow]]
type GetDateAuditResponse = response.APIResponse[reconcile.Report[reconcile.DateRow]]

// @Summary		Value audit
// @Description	Compares each Saving final amount with the amount of the SC with the same order. Differences up to 0.01 are OK.
// @Tags			Reconciliation
// @Produce		json
// @Success		200	{object}	GetValueAuditResponse	"Successfully audited values"
// @Failure		404	{object}	response.ErrorResponse	"No dataset ingested"
// @Router			/reconciliation/values [get]
func (app *application) handleGetValueAudit(w http.ResponseWriter, r *http.Request) {
	tables, err := app.dataset.Current(r.Context())
	if err != nil {
		app.writeDatasetError(w, err)
		return
	}

	report := reconcile.Values(tables.SCs, tables.Savings)
	app.respond(w, http.StatusOK, response.New(report, "Successfully audited values", &tables.Snapshot))
}

// @Summary		Date audit
// @Description	Compares each Saving date with the date of the SC with the same order.
// @Tags			Reconciliation
// @Produce		json
// @Success		200	{object}	GetDateAuditResponse	"Successfully audited dates"
// @Failure		404	{object}	response.ErrorResponse	"No dataset ingested"
// @Router			/reconciliation/dates [get]
func (app *application) handleGetDateAudit(w http.ResponseWriter, r *http.Request) {
	tables, err := app.dataset.Current(r.Context())
	if err != nil {
		app.writeDatasetError(w, err)
		return
	}

	report := reconcile.Dates(tables.SCs, tables.Savings)
	app.respond(w, http.StatusOK, response.New(report, "Successfully audited dates", &tables.Snapshot))
}

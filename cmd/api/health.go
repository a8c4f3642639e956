package main

import (
	"errors"
	"net/http"

	"github.com/farxc/purchasing-kpi/internal/store"
)

// @Summary		Health check
// @Description	returns the status of the service and whether a dataset is loaded
// @Tags			Health
// @Produce		json
// @Success		200	{object}	map[string]string
// @Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {

	data := map[string]string{
		"status":  "available",
		"version": "0.1.0",
		"dataset": "loaded",
	}

	if _, err := app.dataset.Snapshot(r.Context()); err != nil {
		data["dataset"] = "empty"
		if !errors.Is(err, store.ErrNoSnapshot) {
			data["status"] = "degraded"
			data["dataset"] = err.Error()
		}
	}

	app.respond(w, http.StatusOK, data)
}

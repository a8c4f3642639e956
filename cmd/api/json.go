package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/farxc/purchasing-kpi/internal/response"
	"github.com/farxc/purchasing-kpi/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, &response.ErrorResponse{Error: message})

}

// writeDatasetError answers a failed read of the current dataset.
func (app *application) writeDatasetError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNoSnapshot) {
		writeJSONError(w, http.StatusNotFound, "no dataset has been ingested yet")
		return
	}
	app.log.Error(component, "Failed to load current dataset: %v", err)
	writeJSONError(w, http.StatusInternalServerError, "failed to load current dataset: "+err.Error())
}

func (app *application) respond(w http.ResponseWriter, status int, body any) {
	if err := writeJSON(w, status, body); err != nil {
		app.log.Warn(component, "Failed to write response: %v", err)
	}
}

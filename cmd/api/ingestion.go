package main

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/farxc/purchasing-kpi/internal/ingest"
	"github.com/farxc/purchasing-kpi/internal/response"
	"github.com/farxc/purchasing-kpi/internal/sheet"
	"github.com/farxc/purchasing-kpi/internal/store"
)

type GetCurrentIngestionResponse = response.APIResponse[store.Snapshot]
type CreateIngestionResponse = response.APIResponse[ingest.Result]

// @Summary		Get current dataset
// @Description	Metadata of the dataset every metric is currently computed from.
// @Tags			Ingestion
// @Produce		json
// @Success		200	{object}	GetCurrentIngestionResponse	"Successfully retrieved current dataset"
// @Failure		404	{object}	response.ErrorResponse		"No dataset ingested"
// @Failure		500	{object}	response.ErrorResponse		"Failed to get current dataset"
// @Router			/ingestion/current [get]
func (app *application) handleGetCurrentIngestion(w http.ResponseWriter, r *http.Request) {
	snapshot, err := app.dataset.Snapshot(r.Context())
	if err != nil {
		app.writeDatasetError(w, err)
		return
	}

	app.respond(w, http.StatusOK, response.New(snapshot, "Successfully retrieved current dataset", &snapshot))
}

// @Summary		Upload a dataset
// @Description	Replaces the current dataset with an .xlsx workbook (sheets "SC's" and "Saving") or a pair of CSV files.
// @Tags			Ingestion
// @Accept			multipart/form-data
// @Produce		json
// @Param			file		formData	file						false	"Workbook (.xlsx)"
// @Param			scs			formData	file						false	"SC's sheet as CSV"
// @Param			savings		formData	file						false	"Saving sheet as CSV"
// @Param			encoding	formData	string						false	"CSV encoding, utf8 or windows1252"	default(utf8)
// @Success		201			{object}	CreateIngestionResponse		"Dataset replaced"
// @Failure		400			{object}	response.ErrorResponse		"Invalid upload"
// @Failure		413			{object}	response.ErrorResponse		"Upload too large"
// @Failure		500			{object}	response.ErrorResponse		"Failed to store dataset"
// @Router			/ingestion [post]
func (app *application) handleCreateIngestion(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(app.config.maxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d MB", app.config.maxUploadMB))
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	tables, source, err := readUpload(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := app.dataset.Replace(r.Context(), tables.SCs, tables.Savings, source)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to store dataset: "+err.Error())
		return
	}

	app.respond(w, http.StatusCreated, response.New(res, "Dataset replaced", &res.Snapshot))
}

func readUpload(r *http.Request) (sheet.Tables, string, error) {
	files := r.MultipartForm.File

	if headers := files["file"]; len(headers) > 0 {
		f, err := headers[0].Open()
		if err != nil {
			return sheet.Tables{}, "", fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		tables, err := sheet.ReadWorkbook(f)
		if err != nil {
			return sheet.Tables{}, "", err
		}
		return tables, headers[0].Filename, nil
	}

	scHeaders, savingHeaders := files["scs"], files["savings"]
	if len(scHeaders) == 0 || len(savingHeaders) == 0 {
		return sheet.Tables{}, "", errors.New(`expected either "file" or both "scs" and "savings"`)
	}

	encoding, err := sheet.ParseEncoding(r.FormValue("encoding"))
	if err != nil {
		return sheet.Tables{}, "", err
	}

	scs, err := openPart(scHeaders[0])
	if err != nil {
		return sheet.Tables{}, "", err
	}
	defer scs.Close()
	savings, err := openPart(savingHeaders[0])
	if err != nil {
		return sheet.Tables{}, "", err
	}
	defer savings.Close()

	tables, err := sheet.ReadCSVPair(scs, savings, sheet.CSVOptions{Encoding: encoding})
	if err != nil {
		return sheet.Tables{}, "", err
	}
	return tables, scHeaders[0].Filename + "+" + savingHeaders[0].Filename, nil
}

func openPart(h *multipart.FileHeader) (multipart.File, error) {
	f, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", h.Filename, err)
	}
	return f, nil
}

package main

import (
	"net/http"
	"time"

	"github.com/farxc/purchasing-kpi/internal/ingest"
	"github.com/farxc/purchasing-kpi/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const component = "API"

type application struct {
	config  config
	dataset *ingest.Service
	log     *logger.Logger
}

type config struct {
	addr        string
	maxUploadMB int
	logLevel    string
	migrate     bool
	db          dbConfig
}

type dbConfig struct {
	driver       string
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Route("/ingestion", func(r chi.Router) {
			r.Post("/", app.handleCreateIngestion)
			r.Get("/current", app.handleGetCurrentIngestion)
		})
		r.Route("/metrics", func(r chi.Router) {
			r.Get("/aggregate", app.handleGetAggregate)
			r.Get("/top", app.handleGetTop)
			r.Get("/savings-ratio", app.handleGetSavingsRatio)
			r.Get("/overview", app.handleGetOverview)
		})
		r.Route("/reconciliation", func(r chi.Router) {
			r.Get("/values", app.handleGetValueAudit)
			r.Get("/dates", app.handleGetDateAudit)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.log.Info(component, "Server started on %s", app.config.addr)
	return srv.ListenAndServe()
}

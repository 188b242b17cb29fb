package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mnemoapp/mnemo-api/internal/api"
	apiMiddleware "github.com/mnemoapp/mnemo-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	cardHandler := api.NewCardHandler(app.reviewService, app.logger)
	insightsHandler := api.NewInsightsHandler(app.insightsService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Card scheduling endpoints
		r.Post("/cards", cardHandler.CreateCard)
		r.Get("/cards/due", cardHandler.DueCards)
		r.Get("/cards/{id}", cardHandler.GetCard)
		r.Post("/cards/{id}/review", cardHandler.SubmitAnswer)
		r.Post("/cards/{id}/postpone", cardHandler.PostponeCard)
		r.Post("/cards/{id}/suspend", cardHandler.SuspendCard)
		r.Post("/cards/{id}/unsuspend", cardHandler.UnsuspendCard)

		// Insights and parameter endpoints
		r.Get("/insights/stats", insightsHandler.Stats)
		r.Get("/insights/retention", insightsHandler.Retention)
		r.Get("/parameters", insightsHandler.GetParameters)
		r.Put("/parameters", insightsHandler.UpdateParameters)
		r.Post("/parameters/optimize", insightsHandler.OptimizeParameters)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

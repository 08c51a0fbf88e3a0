package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/studyhub/studyhub-api/internal/api"
	apiMiddleware "github.com/studyhub/studyhub-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Every /api route requires a valid bearer token.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	progressHandler := api.NewProgressHandler(app.progressService, app.logger)
	analyticsHandler := api.NewAnalyticsHandler(app.analyticsService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Write side: sessions fold into progress aggregates
		r.Post("/study-sessions", progressHandler.SubmitSession)
		r.Get("/progress", progressHandler.ListProgress)
		r.Get("/progress/{subject}", progressHandler.GetProgress)
		r.Put("/progress/{subject}/goal", progressHandler.SetGoal)

		// Read side
		r.Get("/analytics/distribution", analyticsHandler.GetDistribution)
		r.Get("/analytics/goal-ranking", analyticsHandler.GetGoalRanking)
		r.Get("/analytics/top", analyticsHandler.GetTopProgress)
		r.Get("/analytics/activity", analyticsHandler.GetDailyActivity)
		r.Get("/analytics/activity/summary", analyticsHandler.GetActivitySummary)
		r.Get("/analytics/summary", analyticsHandler.GetSummary)
		r.Get("/analytics/subjects", analyticsHandler.GetSubjectOverview)
		r.Get("/analytics/reminders", analyticsHandler.GetGoalReminders)
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

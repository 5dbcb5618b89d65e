package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", apiHandler.SignupHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.AuthMiddleware)

			// Recording session routes (one session per user)
			r.Post("/session", apiHandler.StartSessionHandler)
			r.Get("/session", apiHandler.SessionStatusHandler)
			r.Post("/session/audio", apiHandler.UploadAudioHandler)
			r.Post("/session/stop", apiHandler.StopSessionHandler)
			r.Post("/session/image", apiHandler.GenerateImageHandler)
			r.Delete("/session", apiHandler.ResetSessionHandler)

			// Journal history and insights
			r.Get("/entries", apiHandler.ListEntriesHandler)
			r.Get("/entries/{entryID}", apiHandler.GetEntryHandler)
			r.Get("/entries/{entryID}/export", apiHandler.ExportEntryHandler)
			r.Get("/insights", apiHandler.InsightsHandler)
		})
	})

	return r
}

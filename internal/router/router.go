package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"intervue-backend/internal/handlers"
	"intervue-backend/internal/middleware"
)

func New(
	chatHandler *handlers.ChatHandler,
	adminHandler *handlers.AdminHandler,
	webDir string,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", chatHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", chatHandler.Chat)

		// ──── Reporting / admin ────
		r.Get("/analytics", adminHandler.Analytics)
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/{id}", adminHandler.GetSession)
			r.Post("/{id}/end", adminHandler.EndSession)
		})
	})

	// Static chat UI
	r.Handle("/*", http.FileServer(http.Dir(webDir)))

	return r
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"wrapgen/internal/http/handlers"
	"wrapgen/internal/middleware"
)

// NewRouter wires the public API surface.
func NewRouter(app *handlers.App, allowedOrigins []string, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(allowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/designs", func(r chi.Router) {
		// Generation is expensive; cap how fast one client can start runs.
		r.With(middleware.RateLimit(10, time.Minute)).Post("/", app.DesignsCreate)
		r.With(middleware.RateLimit(30, time.Minute)).Post("/queue", app.DesignsEnqueue)
		r.Get("/{id}", app.DesignsGet)
		r.Get("/{id}/bundle", app.DesignsBundle)
		r.Post("/{id}/export", app.DesignsExport)
	})

	r.Post("/v1/requests/poll", app.RequestsPoll)

	if staticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	return r
}

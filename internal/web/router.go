package web

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Mondli-02/union-dues-system/internal/infra"
	"github.com/Mondli-02/union-dues-system/internal/middleware"
)

// NewRouter assembles the facade with the gateway's middleware chain.
func NewRouter(app *App, cfg *infra.Config) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/institutions", app.Institutions)
		r.With(middleware.RateLimit(cfg.LoginRatePerMin, time.Minute)).Post("/login", app.Login)
		r.Post("/logout", app.Logout)
		r.Get("/session", app.CurrentSession)
		r.Get("/summary", app.Summary)
		r.Get("/members", app.Members)
		r.Get("/payments", app.Payments)
		r.Get("/payments/export", app.ExportPayments)
		r.Post("/payments", app.SubmitPayment)
		r.Get("/notice", app.Notice)
		r.Post("/refresh", app.Refresh)
	})

	return r
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/service"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/health"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/middleware"
)

// RouterDeps holds everything the router needs.
type RouterDeps struct {
	Journal       *service.JournalService
	Ratings       *service.RatingService
	Pairing       *service.PairingService
	Settings      *service.SettingsService
	Authenticator *Authenticator
	Health        *health.Handler
	CORSOrigins   []string
	Logger        *slog.Logger
}

// NewRouter creates a chi router with all Mini App routes registered. Every
// /api/v1 route requires Telegram authentication; health and metrics do not.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(deps.CORSOrigins))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics("yourday"))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	entryHandler := NewEntryHandler(deps.Journal, deps.Logger)
	ratingHandler := NewRatingHandler(deps.Ratings, deps.Logger)
	relationshipHandler := NewRelationshipHandler(deps.Pairing, deps.Logger)
	settingsHandler := NewSettingsHandler(deps.Settings, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(deps.Authenticator.Middleware)

		r.Get("/me", Me(deps.Logger))

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", entryHandler.Create)
			r.Get("/", entryHandler.List)
			r.Get("/{id}", entryHandler.Get)
			r.Put("/{id}", entryHandler.Update)
			r.Delete("/{id}", entryHandler.Delete)
		})

		r.Route("/ratings", func(r chi.Router) {
			r.Get("/", ratingHandler.List)
			r.Post("/", ratingHandler.Upsert)
		})

		r.Route("/relationships", func(r chi.Router) {
			r.Post("/invite", relationshipHandler.CreateInvite)
			r.Get("/invite/{token}", relationshipHandler.PreviewInvite)
			r.Post("/invite/{token}/redeem", relationshipHandler.RedeemInvite)
			r.Get("/clients", relationshipHandler.ListClients)
			r.Get("/therapist", relationshipHandler.GetTherapist)
			r.Delete("/{id}", relationshipHandler.Disconnect)
		})

		r.Route("/notifications/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.Get)
			r.Put("/", settingsHandler.Update)
		})
	})

	return r
}

// Package api exposes the engine over HTTP. Handlers are thin: they parse
// already-simple scalars and lists, call the engine or the typed store
// reads, and serialize the result. No settlement logic lives here.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tillgate/marketplace/internal/service"
	"github.com/tillgate/marketplace/internal/storage"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	settlement *service.SettlementService,
	onboarding *service.OnboardingService,
	listing *service.ListingService,
	store storage.Store,
) http.Handler {
	h := &Handlers{
		settlement: settlement,
		onboarding: onboarding,
		listing:    listing,
		store:      store,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Onboarding.
		r.Post("/signup", h.Signup)
		r.Post("/users/{id}/become-seller", h.BecomeSeller)

		// Listings.
		r.Post("/items", h.CreateItem)
		r.Get("/items", h.ListItems)

		// Settlements.
		r.Post("/transactions", h.CreateTransaction)
		r.Get("/transactions/{id}", h.GetTransaction)

		// Users.
		r.Get("/users", h.ListUsers)
	})

	return r
}

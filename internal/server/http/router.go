// Package httpserver exposes the services over a JSON HTTP API.
package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/and161185/stockroom/internal/service"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Auth        service.AuthService
	Spaces      service.SpaceService
	Items       service.ItemService
	Inventories service.InventoryService
	Propagation service.PropagationService

	// Ready maps dependency names to their readiness checks.
	Ready map[string]Pinger
	// Observer and Metrics are optional.
	Observer HTTPObserver
	Metrics  http.Handler

	Log *zap.Logger
}

// Handler serves the API routes.
type Handler struct {
	deps     Deps
	validate *validator.Validate
	log      *zap.Logger
}

// NewRouter registers the routes and the middleware stack.
func NewRouter(d Deps) http.Handler {
	h := &Handler{deps: d, validate: newValidator(), log: d.Log}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLog(d.Log, d.Observer))
	r.Use(recoverMiddleware(d.Log))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "route not found"})
	})

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-up", h.signUp)
		r.Post("/sign-in", h.signIn)
		r.Post("/refresh", h.refresh)
		r.Post("/sign-out", h.signOut)
	})

	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(d.Auth))
		r.Get("/users/me", h.me)

		r.Post("/spaces", h.createSpace)
		r.Get("/spaces/{id}", h.getSpace)
		r.Get("/spaces/{id}/children", h.spaceChildren)
		r.Delete("/spaces/{id}", h.deleteSpace)

		r.Post("/items", h.createItem)
		r.Get("/items/{id}", h.getItem)
		r.Put("/items/{id}", h.updateItem)
		r.Delete("/items/{id}", h.deleteItem)
		r.Get("/items/{id}/inventories", h.itemInventories)
		r.Post("/items/{id}/propagate", h.propagateItem)
	})

	return r
}

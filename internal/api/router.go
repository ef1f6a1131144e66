package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mathlinks/internal/labelservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *labelservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Label resolution and rendering.
	r.Get("/label", h.GetLabel)
	r.Get("/render/*", h.RenderDocument)
	r.Post("/decorations", h.Decorations)
	r.Post("/widget-events", h.WidgetEvent)
	r.Get("/outline/*", h.Outline)
	r.Get("/suggest", h.Suggest)

	// Front-matter command.
	r.Put("/mathlink/*", h.SetMathLink)

	// Settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	// Providers and legacy accounts.
	r.Get("/providers", h.ListProviders)
	r.Get("/accounts", h.ListAccounts)
	r.Delete("/accounts/{caller}", h.DeleteAccount)
	r.Get("/accounts/{caller}/paths", h.ListAccountPaths)
	r.Get("/accounts/{caller}/metadata/*", h.GetAccountMetadata)
	r.Patch("/accounts/{caller}/metadata/*", h.UpdateAccountMetadata)
	r.Delete("/accounts/{caller}/metadata/*", h.DeleteAccountMetadata)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// internal/app/features/identity/routes.go
package identity

import (
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// InternalRoutes mounts identity sync for the webhook relay.
// Typically: r.Mount("/internal/identity", identity.InternalRoutes(h, keys))
func InternalRoutes(h *Handler, keys *auth.ServiceKeys) chi.Router {
	r := chi.NewRouter()
	r.Use(keys.RequireService)

	r.Post("/users", h.HandleUser)
	r.Post("/orgs", h.HandleOrg)
	r.Post("/memberships", h.HandleMembership)

	return r
}

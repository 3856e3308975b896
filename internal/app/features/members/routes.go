// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts membership management for one company.
// Typically: r.Mount("/api/companies/{companyID}/members", members.Routes(h, sm))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/invite", h.HandleInvite)
		pr.Post("/{userID}/role", h.HandleSetRole)
		pr.Post("/{userID}/remove", h.HandleRemove)
	})

	return r
}

// InviteRoutes mounts invite acceptance.
// Typically: r.Mount("/api/invites", members.InviteRoutes(h, sm))
func InviteRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireSignedIn).Post("/{token}/accept", h.HandleAccept)
	return r
}

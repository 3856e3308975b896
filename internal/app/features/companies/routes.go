// internal/app/features/companies/routes.go
package companies

import (
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the signed-in company API.
// Typically: r.Mount("/api/companies", companies.Routes(h, sm))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Signed-out callers get null rather than 401.
	r.Get("/context", h.ServeContext)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/{companyID}/usage", h.ServeMyUsage)
		pr.Get("/{companyID}/audit", h.ServeAudit)
	})

	return r
}

// InternalRoutes mounts the service-only company API.
// Typically: r.Mount("/internal/companies", companies.InternalRoutes(h, keys))
func InternalRoutes(h *Handler, keys *auth.ServiceKeys) chi.Router {
	r := chi.NewRouter()
	r.Use(keys.RequireService)
	r.Get("/{companyID}/usage", h.ServeUsage)
	return r
}

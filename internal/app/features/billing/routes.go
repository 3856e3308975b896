// internal/app/features/billing/routes.go
package billing

import (
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// InternalRoutes mounts the billing sync endpoint. There is no role check;
// the service key is the only gate.
// Typically: r.Mount("/internal/billing", billing.InternalRoutes(h, keys))
func InternalRoutes(h *Handler, keys *auth.ServiceKeys) chi.Router {
	r := chi.NewRouter()
	r.Use(keys.RequireService)
	r.Post("/plan", h.HandlePlan)
	return r
}

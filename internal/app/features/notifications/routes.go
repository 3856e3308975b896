// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the signed-in inbox.
// Typically: r.Mount("/api/notifications", notifications.Routes(h, sm))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/unread-count", h.ServeUnreadCount)
		pr.Post("/read-all", h.HandleMarkAllRead)
		pr.Post("/{id}/read", h.HandleMarkRead)
	})

	return r
}

// InternalRoutes mounts notification creation for trusted services.
// Typically: r.Mount("/internal/notifications", notifications.InternalRoutes(h, keys))
func InternalRoutes(h *Handler, keys *auth.ServiceKeys) chi.Router {
	r := chi.NewRouter()
	r.Use(keys.RequireService)
	r.Post("/", h.HandleCreate)
	return r
}

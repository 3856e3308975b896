// internal/app/features/companies/context.go
package companies

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeContext handles GET /api/companies/context?clerkOrgId=…
//
// Responds with the caller's company context, or null when the caller is
// signed out or the org has no company yet.
func (h *Handler) ServeContext(w http.ResponseWriter, r *http.Request) {
	orgID := strings.TrimSpace(r.URL.Query().Get("clerkOrgId"))
	if orgID == "" {
		httpjson.Error(w, http.StatusBadRequest, "clerkOrgId is required")
		return
	}

	caller, _ := auth.CurrentUser(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	cc, err := h.Queries.GetMyCompanyContext(ctx, caller, orgID)
	if err != nil {
		h.writeErr(w, err, "company context failed", zap.String("clerk_org_id", orgID))
		return
	}
	httpjson.OK(w, cc)
}

// internal/app/features/companies/usage.go
package companies

import (
	"net/http"

	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeMyUsage handles GET /api/companies/{companyID}/usage for an active member.
func (h *Handler) ServeMyUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	companyID, ok := httpjson.ObjectIDParam(r, "companyID")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, "invalid company id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "company usage")
	defer cancel()
	u, err := h.Queries.GetMyCompanyUsage(ctx, userID, companyID)
	if err != nil {
		h.writeErr(w, err, "company usage failed",
			zap.String("company_id", companyID.Hex()),
			zap.String("user_id", userID.Hex()))
		return
	}
	httpjson.OK(w, u)
}

// ServeUsage handles GET /internal/companies/{companyID}/usage.
// No membership is checked; the service key is the gate.
func (h *Handler) ServeUsage(w http.ResponseWriter, r *http.Request) {
	companyID, ok := httpjson.ObjectIDParam(r, "companyID")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, "invalid company id")
		return
	}

	svc := auth.ServiceFrom(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "internal company usage")
	defer cancel()
	u, err := h.Queries.GetCompanyUsage(ctx, svc, companyID)
	if err != nil {
		h.writeErr(w, err, "internal company usage failed",
			zap.String("company_id", companyID.Hex()),
			zap.String("service", svc.Name()))
		return
	}
	httpjson.OK(w, u)
}

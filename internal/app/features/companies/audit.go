// internal/app/features/companies/audit.go
package companies

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/hirehub/internal/app/policy/companypolicy"
	"github.com/dalemusser/hirehub/internal/app/store/audit"
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type auditPage struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	Limit  int64         `json:"limit"`
	Offset int64         `json:"offset"`
}

// ServeAudit handles GET /api/companies/{companyID}/audit?category=&limit=&offset=
// Owners and admins only.
func (h *Handler) ServeAudit(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "company audit")
	defer cancel()
	if _, err := h.Guard.RequireCompany(ctx, companyID); err != nil {
		h.writeErr(w, err, "audit: load company failed", zap.String("company_id", companyID.Hex()))
		return
	}
	if _, err := h.Guard.RequireCompanyRole(ctx, companyID, userID, companypolicy.ManagerRoles...); err != nil {
		h.writeErr(w, err, "audit: membership check failed", zap.String("company_id", companyID.Hex()))
		return
	}

	q := r.URL.Query()
	filter := audit.QueryFilter{
		CompanyID: &companyID,
		Category:  q.Get("category"),
		Limit:     parseInt(q.Get("limit"), defaultAuditLimit),
		Offset:    parseInt(q.Get("offset"), 0),
	}
	if filter.Limit <= 0 || filter.Limit > maxAuditLimit {
		filter.Limit = defaultAuditLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.writeErr(w, err, "audit query failed", zap.String("company_id", companyID.Hex()))
		return
	}
	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		h.writeErr(w, err, "audit count failed", zap.String("company_id", companyID.Hex()))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httpjson.OK(w, auditPage{Events: events, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func parseInt(s string, def int64) int64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return n
}

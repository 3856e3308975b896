// internal/app/features/members/list.go
package members

import (
	"net/http"

	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeList handles GET /api/companies/{companyID}/members.
// Active members see every pending and active row; ?removed=true adds removed rows.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actorID, companyID, ok := h.actorAndCompany(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "member list")
	defer cancel()

	if _, err := h.Guard.RequireCompany(ctx, companyID); err != nil {
		h.writeErr(w, err, "members: load company failed", zap.String("company_id", companyID.Hex()))
		return
	}
	if _, err := h.Guard.RequireActiveMembership(ctx, companyID, actorID); err != nil {
		h.writeErr(w, err, "members: membership check failed", zap.String("company_id", companyID.Hex()))
		return
	}

	rows, err := h.Members.ListByCompany(ctx, companyID)
	if err != nil {
		h.writeErr(w, err, "members: list failed", zap.String("company_id", companyID.Hex()))
		return
	}

	includeRemoved := r.URL.Query().Get("removed") == "true"
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.UserID)
	}
	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		h.writeErr(w, err, "members: load users failed", zap.String("company_id", companyID.Hex()))
		return
	}

	out := make([]memberRow, 0, len(rows))
	for _, m := range rows {
		if m.Status == models.MemberStatusRemoved && !includeRemoved {
			continue
		}
		u := users[m.UserID]
		out = append(out, memberRow{
			UserID:    m.UserID,
			Name:      u.DisplayName(),
			Email:     u.Email,
			ImageURL:  u.ImageURL,
			Role:      m.Role,
			Status:    m.Status,
			InvitedAt: m.InvitedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	httpjson.OK(w, out)
}

// actorAndCompany resolves the signed-in caller and the {companyID} param,
// writing the error response itself when either is missing.
func (h *Handler) actorAndCompany(w http.ResponseWriter, r *http.Request) (actorID, companyID primitive.ObjectID, ok bool) {
	actorID, ok = auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	companyID, ok = httpjson.ObjectIDParam(r, "companyID")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, "invalid company id")
	}
	return
}

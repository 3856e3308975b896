// internal/app/features/members/accept.go
package members

import (
	"context"
	"net/http"

	"github.com/dalemusser/hirehub/internal/app/policy/companypolicy"
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"github.com/dalemusser/hirehub/internal/app/system/notify"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleAccept handles POST /api/invites/{token}/accept.
// The token must belong to a pending invite addressed to the caller.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, err := u.ObjectID()
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	m, err := h.Members.Accept(ctx, chi.URLParam(r, "token"), userID)
	if err != nil {
		h.writeErr(w, err, "accept invite failed", zap.String("user_id", userID.Hex()))
		return
	}

	h.AuditLog.MemberJoined(ctx, r, m.CompanyID, userID)
	h.notifyManagers(ctx, m.CompanyID, userID, notify.Message{
		Type:     models.NotificationMemberJoined,
		Title:    "New team member",
		Message:  u.Name + " joined the team as " + string(m.Role) + ".",
		Metadata: map[string]string{"company_id": m.CompanyID.Hex(), "user_id": userID.Hex()},
	})

	httpjson.OK(w, m)
}

// notifyManagers sends msg to the active owners and admins of a company,
// skipping the member who triggered it.
func (h *Handler) notifyManagers(ctx context.Context, companyID, skip primitive.ObjectID, msg notify.Message) {
	var ids []primitive.ObjectID
	for _, role := range companypolicy.ManagerRoles {
		rows, err := h.Members.ListActiveByRole(ctx, companyID, role)
		if err != nil {
			h.Log.Warn("list managers for notification failed",
				zap.String("company_id", companyID.Hex()),
				zap.String("role", string(role)),
				zap.Error(err))
			continue
		}
		for _, m := range rows {
			if m.UserID != skip {
				ids = append(ids, m.UserID)
			}
		}
	}
	h.Notifier.Notify(ctx, msg, ids...)
}

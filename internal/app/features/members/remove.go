// internal/app/features/members/remove.go
package members

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/hirehub/internal/app/policy/companypolicy"
	"github.com/dalemusser/hirehub/internal/app/store/audit"
	companymemberstore "github.com/dalemusser/hirehub/internal/app/store/companymembers"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"github.com/dalemusser/hirehub/internal/app/system/notify"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleRemove handles POST /api/companies/{companyID}/members/{userID}/remove.
// Managers remove others; any active member may remove themselves.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	actorID, companyID, ok := h.actorAndCompany(w, r)
	if !ok {
		return
	}
	targetID, ok := httpjson.ObjectIDParam(r, "userID")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	logFields := []zap.Field{zap.String("company_id", companyID.Hex()), zap.String("user_id", targetID.Hex())}
	company, err := h.Guard.RequireCompany(ctx, companyID)
	if err != nil {
		h.writeErr(w, err, "remove: load company failed", logFields...)
		return
	}
	actor, err := h.Guard.RequireActiveMembership(ctx, companyID, actorID)
	if err != nil {
		h.writeErr(w, err, "remove: membership check failed", logFields...)
		return
	}
	target, err := h.Members.Get(ctx, companyID, targetID)
	if err != nil {
		h.writeErr(w, err, "remove: load target failed", logFields...)
		return
	}
	if !companypolicy.CanRemove(actorID, actor.Role, targetID, target.Role) {
		h.AuditLog.MemberChangeDenied(ctx, r, companyID, actorID, targetID, audit.EventMemberRemoved, "insufficient role")
		httpjson.Error(w, http.StatusForbidden, "access denied")
		return
	}

	removed, err := h.Members.Remove(ctx, companyID, targetID)
	if err != nil {
		if errors.Is(err, companymemberstore.ErrLastOwner) {
			h.AuditLog.MemberChangeDenied(ctx, r, companyID, actorID, targetID, audit.EventMemberRemoved, "last active owner")
		}
		h.writeErr(w, err, "remove failed", logFields...)
		return
	}

	if target.Status != models.MemberStatusRemoved {
		h.AuditLog.MemberRemoved(ctx, r, companyID, actorID, targetID)
		if targetID != actorID {
			h.Notifier.Notify(ctx, notify.Message{
				Type:     models.NotificationMemberRemoved,
				Title:    "Removed from " + companyLabel(company),
				Message:  "You no longer have access to " + companyLabel(company) + ".",
				Metadata: map[string]string{"company_id": companyID.Hex()},
			}, targetID)
		}
	}

	httpjson.OK(w, removed)
}

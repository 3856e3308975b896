// internal/app/features/members/role.go
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

// HandleSetRole handles POST /api/companies/{companyID}/members/{userID}/role.
// Body: {"role": "admin"}.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	actorID, companyID, ok := h.actorAndCompany(w, r)
	if !ok {
		return
	}
	targetID, ok := httpjson.ObjectIDParam(r, "userID")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req roleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, "invalid role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	logFields := []zap.Field{zap.String("company_id", companyID.Hex()), zap.String("user_id", targetID.Hex())}
	company, err := h.Guard.RequireCompany(ctx, companyID)
	if err != nil {
		h.writeErr(w, err, "set role: load company failed", logFields...)
		return
	}
	actor, err := h.Guard.RequireCompanyRole(ctx, companyID, actorID, companypolicy.ManagerRoles...)
	if err != nil {
		h.writeErr(w, err, "set role: membership check failed", logFields...)
		return
	}
	target, err := h.Members.Get(ctx, companyID, targetID)
	if err != nil {
		h.writeErr(w, err, "set role: load target failed", logFields...)
		return
	}
	if !companypolicy.CanAssignRole(actor.Role, target.Role, role) {
		h.AuditLog.MemberChangeDenied(ctx, r, companyID, actorID, targetID, audit.EventMemberRoleChanged, "only owners grant or revoke ownership")
		httpjson.Error(w, http.StatusForbidden, "access denied")
		return
	}

	updated, err := h.Members.SetRole(ctx, companyID, targetID, role)
	if err != nil {
		if errors.Is(err, companymemberstore.ErrLastOwner) {
			h.AuditLog.MemberChangeDenied(ctx, r, companyID, actorID, targetID, audit.EventMemberRoleChanged, "last active owner")
		}
		h.writeErr(w, err, "set role failed", logFields...)
		return
	}

	if target.Role != updated.Role {
		h.AuditLog.MemberRoleChanged(ctx, r, companyID, actorID, targetID, target.Role, updated.Role)
		if targetID != actorID {
			h.Notifier.Notify(ctx, notify.Message{
				Type:     models.NotificationRoleChanged,
				Title:    "Your role changed",
				Message:  "Your role in " + companyLabel(company) + " is now " + string(updated.Role) + ".",
				Metadata: map[string]string{"company_id": companyID.Hex(), "role": string(updated.Role)},
			}, targetID)
		}
	}

	httpjson.OK(w, updated)
}

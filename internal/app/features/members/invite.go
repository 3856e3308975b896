// internal/app/features/members/invite.go
package members

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/hirehub/internal/app/policy/companypolicy"
	"github.com/dalemusser/hirehub/internal/app/store/audit"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"github.com/dalemusser/hirehub/internal/app/system/notify"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleInvite handles POST /api/companies/{companyID}/members/invite.
// Body: {"email": "...", "role": "recruiter"}. Owners and admins only;
// only an owner may invite another owner.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	actorID, companyID, ok := h.actorAndCompany(w, r)
	if !ok {
		return
	}

	var req inviteRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, "invalid role")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		httpjson.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	company, err := h.Guard.RequireCompany(ctx, companyID)
	if err != nil {
		h.writeErr(w, err, "invite: load company failed", zap.String("company_id", companyID.Hex()))
		return
	}
	actor, err := h.Guard.RequireCompanyRole(ctx, companyID, actorID, companypolicy.ManagerRoles...)
	if err != nil {
		h.writeErr(w, err, "invite: membership check failed", zap.String("company_id", companyID.Hex()))
		return
	}
	if !companypolicy.CanAssignRole(actor.Role, role, role) {
		h.AuditLog.MemberChangeDenied(ctx, r, companyID, actorID, actorID, audit.EventMemberInvited, "only owners may invite owners")
		httpjson.Error(w, http.StatusForbidden, "access denied")
		return
	}

	invitee, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		h.writeErr(w, err, "invite: user lookup failed", zap.String("company_id", companyID.Hex()))
		return
	}

	m, err := h.Members.Invite(ctx, companyID, invitee.ID, role, actorID)
	if err != nil {
		h.writeErr(w, err, "invite failed",
			zap.String("company_id", companyID.Hex()),
			zap.String("user_id", invitee.ID.Hex()))
		return
	}

	h.AuditLog.MemberInvited(ctx, r, companyID, actorID, invitee.ID, role)
	h.Notifier.Notify(ctx, notify.Message{
		Type:    models.NotificationTeamInvite,
		Title:   "You're invited to join " + companyLabel(company),
		Message: "You have been invited to join " + companyLabel(company) + " as " + string(role) + ".",
		Link:    "/invites/" + m.InviteToken,
		Metadata: map[string]string{
			"company_id": companyID.Hex(),
			"role":       string(role),
		},
	}, invitee.ID)

	httpjson.Write(w, http.StatusCreated, memberRow{
		UserID:    m.UserID,
		Name:      invitee.DisplayName(),
		Email:     invitee.Email,
		ImageURL:  invitee.ImageURL,
		Role:      m.Role,
		Status:    m.Status,
		InvitedAt: m.InvitedAt,
		UpdatedAt: m.UpdatedAt,
	})
}

func companyLabel(c models.Company) string {
	if c.Name == "" {
		return "a company"
	}
	return c.Name
}

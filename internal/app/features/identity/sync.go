// internal/app/features/identity/sync.go
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	companystore "github.com/dalemusser/hirehub/internal/app/store/companies"
	companymemberstore "github.com/dalemusser/hirehub/internal/app/store/companymembers"
	userstore "github.com/dalemusser/hirehub/internal/app/store/users"
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.uber.org/zap"
)

type userRequest struct {
	ClerkID   string `json:"clerkId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	ImageURL  string `json:"imageUrl"`
}

type orgRequest struct {
	ClerkOrgID string `json:"clerkOrgId"`
	Name       string `json:"name"`
}

// membershipRequest reports a membership; Deleted withdraws it.
type membershipRequest struct {
	ClerkOrgID  string `json:"clerkOrgId"`
	ClerkUserID string `json:"clerkUserId"`
	Role        string `json:"role"`
	Deleted     bool   `json:"deleted"`
}

type orgResponse struct {
	Company models.Company `json:"company"`
	Created bool           `json:"created"`
}

// service returns the verified caller or writes 401.
func service(w http.ResponseWriter, r *http.Request) (auth.ServiceIdentity, bool) {
	svc := auth.ServiceFrom(r)
	if err := svc.Check(); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return svc, false
	}
	return svc, true
}

// HandleUser handles POST /internal/identity/users.
func (h *Handler) HandleUser(w http.ResponseWriter, r *http.Request) {
	svc, ok := service(w, r)
	if !ok {
		return
	}
	var req userRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ClerkID) == "" {
		httpjson.Error(w, http.StatusBadRequest, "clerkId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	u, err := h.Users.Upsert(ctx, userstore.Profile{
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		FullName:  req.FullName,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		httpjson.Internal(w, h.Log, "user sync failed", err, zap.String("clerk_id", req.ClerkID))
		return
	}

	h.AuditLog.UserSynced(ctx, svc.Name(), u)
	httpjson.OK(w, u)
}

// HandleOrg handles POST /internal/identity/orgs. The company row is created
// if missing; billing fields are left to the billing sync.
func (h *Handler) HandleOrg(w http.ResponseWriter, r *http.Request) {
	svc, ok := service(w, r)
	if !ok {
		return
	}
	var req orgRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	c, created, err := h.Companies.EnsureForOrg(ctx, req.ClerkOrgID, req.Name)
	if errors.Is(err, companystore.ErrInvalid) {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "org sync failed", err, zap.String("clerk_org_id", req.ClerkOrgID))
		return
	}

	h.AuditLog.CompanySynced(ctx, svc.Name(), c, created)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpjson.Write(w, status, orgResponse{Company: c, Created: created})
}

// HandleMembership handles POST /internal/identity/memberships.
// Both the company and the user must already be synced.
func (h *Handler) HandleMembership(w http.ResponseWriter, r *http.Request) {
	svc, ok := service(w, r)
	if !ok {
		return
	}
	var req membershipRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, roleOK := models.ParseRole(req.Role)
	if !req.Deleted && !roleOK {
		httpjson.Error(w, http.StatusBadRequest, "invalid role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	fields := []zap.Field{zap.String("clerk_org_id", req.ClerkOrgID), zap.String("clerk_user_id", req.ClerkUserID)}

	company, err := h.Companies.GetByClerkOrgID(ctx, req.ClerkOrgID)
	if errors.Is(err, companystore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "company not found")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "membership sync: load company failed", err, fields...)
		return
	}
	user, err := h.Users.GetByClerkID(ctx, req.ClerkUserID)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "membership sync: load user failed", err, fields...)
		return
	}

	var m models.CompanyMember
	if req.Deleted {
		m, err = h.Members.Remove(ctx, company.ID, user.ID)
	} else {
		m, err = h.Members.UpsertActive(ctx, company.ID, user.ID, role)
	}
	switch {
	case errors.Is(err, companymemberstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "membership not found")
		return
	case errors.Is(err, companymemberstore.ErrLastOwner):
		httpjson.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		httpjson.Internal(w, h.Log, "membership sync failed", err, fields...)
		return
	}

	h.AuditLog.MembershipSynced(ctx, svc.Name(), m)
	httpjson.OK(w, m)
}

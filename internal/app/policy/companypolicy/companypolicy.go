// internal/app/policy/companypolicy/companypolicy.go
package companypolicy

import (
	"context"
	"errors"
	"fmt"

	companystore "github.com/dalemusser/hirehub/internal/app/store/companies"
	companymemberstore "github.com/dalemusser/hirehub/internal/app/store/companymembers"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrCompanyNotFound is returned when the referenced company does not exist.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrAccessDenied is returned when the caller has no active membership
	// or its role is not allowed.
	ErrAccessDenied = errors.New("access denied")
)

// CompanyGetter is the subset of the company store the guards read.
type CompanyGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Company, error)
}

// MembershipGetter is the subset of the membership store the guards read.
type MembershipGetter interface {
	Get(ctx context.Context, companyID, userID primitive.ObjectID) (models.CompanyMember, error)
}

// Guard re-derives the caller's standing from the store on every call.
// Nothing is cached and no caller-supplied role is trusted.
type Guard struct {
	Companies CompanyGetter
	Members   MembershipGetter
}

// New returns a Guard over the given stores.
func New(companies CompanyGetter, members MembershipGetter) *Guard {
	return &Guard{Companies: companies, Members: members}
}

// RequireCompany returns the company or ErrCompanyNotFound.
func (g *Guard) RequireCompany(ctx context.Context, companyID primitive.ObjectID) (models.Company, error) {
	c, err := g.Companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, companystore.ErrNotFound) {
			return models.Company{}, ErrCompanyNotFound
		}
		return models.Company{}, fmt.Errorf("load company %s: %w", companyID.Hex(), err)
	}
	return c, nil
}

// RequireActiveMembership returns the caller's membership if it is active.
// Absent, pending and removed memberships all yield ErrAccessDenied.
func (g *Guard) RequireActiveMembership(ctx context.Context, companyID, userID primitive.ObjectID) (models.CompanyMember, error) {
	m, err := g.Members.Get(ctx, companyID, userID)
	if err != nil {
		if errors.Is(err, companymemberstore.ErrNotFound) {
			return models.CompanyMember{}, ErrAccessDenied
		}
		return models.CompanyMember{}, fmt.Errorf("load membership: %w", err)
	}
	switch m.Status {
	case models.MemberStatusActive:
		return m, nil
	case models.MemberStatusPending, models.MemberStatusRemoved:
		return models.CompanyMember{}, ErrAccessDenied
	default:
		// Unknown status values never grant access.
		return models.CompanyMember{}, ErrAccessDenied
	}
}

// RequireCompanyRole is RequireActiveMembership plus a role check against
// allowed. An empty allowed set admits nobody.
func (g *Guard) RequireCompanyRole(ctx context.Context, companyID, userID primitive.ObjectID, allowed ...models.Role) (models.CompanyMember, error) {
	m, err := g.RequireActiveMembership(ctx, companyID, userID)
	if err != nil {
		return models.CompanyMember{}, err
	}
	switch m.Role {
	case models.RoleOwner, models.RoleAdmin, models.RoleRecruiter, models.RoleMember:
		if models.RoleIn(m.Role, allowed) {
			return m, nil
		}
		return models.CompanyMember{}, ErrAccessDenied
	default:
		return models.CompanyMember{}, ErrAccessDenied
	}
}

// ManagerRoles may invite, re-role and remove members.
var ManagerRoles = []models.Role{models.RoleOwner, models.RoleAdmin}

// CanAssignRole reports whether actor may move a member from role `from`
// to role `to`. Only owners grant or revoke ownership.
func CanAssignRole(actor, from, to models.Role) bool {
	if !models.RoleIn(actor, ManagerRoles) {
		return false
	}
	if from == models.RoleOwner || to == models.RoleOwner {
		return actor == models.RoleOwner
	}
	return true
}

// CanRemove reports whether actor (with actorRole) may remove target
// (holding targetRole). Anyone may remove themselves; managers may remove
// others, but only owners remove owners.
func CanRemove(actorID primitive.ObjectID, actorRole models.Role, targetID primitive.ObjectID, targetRole models.Role) bool {
	if actorID == targetID {
		return true
	}
	if !models.RoleIn(actorRole, ManagerRoles) {
		return false
	}
	if targetRole == models.RoleOwner {
		return actorRole == models.RoleOwner
	}
	return true
}

// internal/domain/models/enums.go
package models

import "strings"

// Role is a member's role within a company.
type Role string

// Canonical roles, highest privilege first.
const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleMember    Role = "member"
)

// Roles is the full set of allowed roles.
var Roles = []Role{RoleOwner, RoleAdmin, RoleRecruiter, RoleMember}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleRecruiter, RoleMember:
		return true
	}
	return false
}

// ParseRole normalizes s and returns the matching Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// RoleIn reports whether r appears in allowed.
func RoleIn(r Role, allowed []Role) bool {
	for _, a := range allowed {
		if a == r {
			return true
		}
	}
	return false
}

// MemberStatus is the lifecycle state of a membership.
type MemberStatus string

const (
	MemberStatusPending MemberStatus = "pending" // invited, not accepted
	MemberStatusActive  MemberStatus = "active"
	MemberStatusRemoved MemberStatus = "removed"
)

// MemberStatuses is the full set of allowed membership statuses.
var MemberStatuses = []MemberStatus{MemberStatusPending, MemberStatusActive, MemberStatusRemoved}

// Valid reports whether s is one of MemberStatuses.
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusPending, MemberStatusActive, MemberStatusRemoved:
		return true
	}
	return false
}

// Plan is a company's billing plan.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanStarter Plan = "starter"
	PlanGrowth  Plan = "growth"
)

// Plans is the full set of allowed plans.
var Plans = []Plan{PlanFree, PlanStarter, PlanGrowth}

// Valid reports whether p is one of Plans.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanStarter, PlanGrowth:
		return true
	}
	return false
}

// ParsePlan normalizes s and returns the matching Plan.
func ParsePlan(s string) (Plan, bool) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// internal/domain/models/company.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company is a tenant workspace. One document per external organization;
// ClerkOrgID is unique across the collection.
type Company struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	ClerkOrgID string             `bson:"clerk_org_id" json:"clerkOrgId"`
	Name       string             `bson:"name" json:"name"`
	NameCI     string             `bson:"name_ci" json:"-"` // ← always stored

	// Billing plan and limits, reconciled from the billing provider.
	Plan      *Plan `bson:"plan,omitempty" json:"plan,omitempty"`
	SeatLimit int   `bson:"seat_limit" json:"seatLimit"`
	JobLimit  int   `bson:"job_limit" json:"jobLimit"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`

	// OwnersChangedAt is written by every guarded role change or removal so
	// concurrent owner changes on one company conflict.
	OwnersChangedAt *time.Time `bson:"owners_changed_at,omitempty" json:"-"`
}

// PlanName returns the plan as a string, or "" when no plan is set.
func (c Company) PlanName() string {
	if c.Plan == nil {
		return ""
	}
	return string(*c.Plan)
}

// internal/domain/models/companymember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompanyMember is the authoritative join between users and companies.
// Exactly one document per (company_id, user_id). Rows are never deleted;
// removal is a status transition.
type CompanyMember struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CompanyID primitive.ObjectID  `bson:"company_id" json:"companyId"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"userId"`
	Role      Role                `bson:"role" json:"role"`
	Status    MemberStatus        `bson:"status" json:"status"`
	InvitedBy *primitive.ObjectID `bson:"invited_by,omitempty" json:"invitedBy,omitempty"`

	// InviteToken is present only while the membership is pending.
	InviteToken string `bson:"invite_token,omitempty" json:"-"`

	InvitedAt time.Time `bson:"invited_at" json:"invitedAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the membership grants access to the company.
func (m CompanyMember) IsActive() bool {
	return m.Status == MemberStatusActive
}

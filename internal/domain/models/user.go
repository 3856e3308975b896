// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the local record for an account managed by the external identity
// provider. ClerkID is the provider's user id and is unique.
//
// NOTE:
//   - Company membership is not embedded on User.
//     Use the company_members collection to discover a user's companies.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClerkID   string             `bson:"clerk_id" json:"clerkId"`
	Email     string             `bson:"email" json:"email"`
	EmailCI   string             `bson:"email_ci" json:"-"` // folded for lookup
	FirstName string             `bson:"first_name,omitempty" json:"firstName,omitempty"`
	LastName  string             `bson:"last_name,omitempty" json:"lastName,omitempty"`
	FullName  string             `bson:"full_name" json:"fullName"`
	ImageURL  string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// DisplayName returns FullName, falling back to the first/last name pair and
// then to the email address.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Email
}

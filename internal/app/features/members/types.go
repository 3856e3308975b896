// internal/app/features/members/types.go
package members

import (
	"time"

	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memberRow is one entry of the member list.
type memberRow struct {
	UserID    primitive.ObjectID  `json:"userId"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	ImageURL  string              `json:"imageUrl,omitempty"`
	Role      models.Role         `json:"role"`
	Status    models.MemberStatus `json:"status"`
	InvitedAt time.Time           `json:"invitedAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type roleRequest struct {
	Role string `json:"role"`
}

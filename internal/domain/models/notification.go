// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a message surfaced to a single user.
// ReadAt is set only when IsRead transitions to true.
type Notification struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"userId"`
	Type     NotificationType   `bson:"type" json:"type"`
	Title    string             `bson:"title" json:"title"`
	Message  string             `bson:"message" json:"message"`
	Link     string             `bson:"link,omitempty" json:"link,omitempty"`
	Metadata map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	IsRead   bool               `bson:"is_read" json:"isRead"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
	ReadAt    *time.Time `bson:"read_at,omitempty" json:"readAt,omitempty"`
}

// NotificationType identifies what produced a notification.
type NotificationType string

const (
	NotificationTeamInvite          NotificationType = "team_invite"
	NotificationMemberJoined        NotificationType = "member_joined"
	NotificationRoleChanged         NotificationType = "role_changed"
	NotificationMemberRemoved       NotificationType = "member_removed"
	NotificationPlanChanged         NotificationType = "plan_changed"
	NotificationApplicationReceived NotificationType = "application_received"
	NotificationSystem              NotificationType = "system"
)

// NotificationTypes is the full set of allowed notification types.
var NotificationTypes = []NotificationType{
	NotificationTeamInvite,
	NotificationMemberJoined,
	NotificationRoleChanged,
	NotificationMemberRemoved,
	NotificationPlanChanged,
	NotificationApplicationReceived,
	NotificationSystem,
}

// Valid reports whether t is one of NotificationTypes.
func (t NotificationType) Valid() bool {
	for _, v := range NotificationTypes {
		if v == t {
			return true
		}
	}
	return false
}

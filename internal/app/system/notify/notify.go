// Package notify creates user notifications on behalf of other features.
// Delivery is best-effort: failures are logged and never fail the caller's
// primary write.
package notify

import (
	"context"

	"github.com/dalemusser/hirehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Creator persists a notification.
type Creator interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
}

// Message is the user-visible content of a notification.
type Message struct {
	Type     models.NotificationType
	Title    string
	Message  string
	Link     string
	Metadata map[string]string
}

// Notifier sanitizes messages and stores one notification per recipient.
type Notifier struct {
	store Creator
	log   *zap.Logger
}

// New returns a Notifier. A nil Notifier drops every message.
func New(store Creator, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{store: store, log: logger}
}

// Clean returns msg with title and message reduced to plain text and the
// link dropped unless it is an in-app path or http(s) URL.
func Clean(msg Message) Message {
	msg.Title = htmlsanitize.PlainText(msg.Title)
	msg.Message = htmlsanitize.PlainText(msg.Message)
	msg.Link = htmlsanitize.Link(msg.Link)
	if len(msg.Metadata) > 0 {
		md := make(map[string]string, len(msg.Metadata))
		for k, v := range msg.Metadata {
			md[k] = htmlsanitize.PlainText(v)
		}
		msg.Metadata = md
	}
	return msg
}

// Send stores msg for userID and returns the stored notification.
func (n *Notifier) Send(ctx context.Context, userID primitive.ObjectID, msg Message) (models.Notification, error) {
	msg = Clean(msg)
	return n.store.Create(ctx, models.Notification{
		UserID:   userID,
		Type:     msg.Type,
		Title:    msg.Title,
		Message:  msg.Message,
		Link:     msg.Link,
		Metadata: msg.Metadata,
	})
}

// Notify stores msg for each recipient, logging failures. It returns the
// number of notifications stored.
func (n *Notifier) Notify(ctx context.Context, msg Message, userIDs ...primitive.ObjectID) int {
	if n == nil {
		return 0
	}
	sent := 0
	for _, id := range userIDs {
		if _, err := n.Send(ctx, id, msg); err != nil {
			n.log.Warn("notification not stored",
				zap.String("user_id", id.Hex()),
				zap.String("type", string(msg.Type)),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

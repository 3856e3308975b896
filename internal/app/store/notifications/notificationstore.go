// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultListLimit and MaxListLimit bound ListByUser.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var (
	// ErrNotFound is returned when the notification does not exist for the user.
	ErrNotFound = errors.New("notification not found")
	// ErrInvalid wraps input validation failures.
	ErrInvalid = errors.New("invalid notification")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Create inserts an unread notification. ID and timestamps are assigned here.
func (s *Store) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.UserID.IsZero() {
		return models.Notification{}, fmt.Errorf("%w: user_id is required", ErrInvalid)
	}
	if !n.Type.Valid() {
		return models.Notification{}, fmt.Errorf("%w: unknown type %q", ErrInvalid, n.Type)
	}
	if n.Title == "" {
		return models.Notification{}, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	now := time.Now().UTC()
	n.ID = primitive.NewObjectID()
	n.IsRead = false
	n.ReadAt = nil
	n.CreatedAt = now
	n.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// ListOptions filters ListByUser.
type ListOptions struct {
	UnreadOnly bool
	Limit      int64 // clamped to [1, MaxListLimit]; 0 means DefaultListLimit
}

// ListByUser returns the user's notifications, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, opt ListOptions) ([]models.Notification, error) {
	limit := opt.Limit
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	filter := bson.M{"user_id": userID}
	if opt.UnreadOnly {
		filter["is_read"] = false
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]models.Notification, 0, limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountUnread returns the number of unread notifications for the user.
func (s *Store) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}

// MarkRead flips one notification to read. read_at is written only on the
// false→true transition; marking an already-read notification is a no-op
// and returns changed=false.
func (s *Store) MarkRead(ctx context.Context, userID, id primitive.ObjectID) (changed bool, err error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now, "updated_at": now}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	err = s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, ErrNotFound
	}
	return false, err
}

// MarkAllRead marks every unread notification of the user as read.
func (s *Store) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now, "updated_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteReadBefore removes read notifications created before cutoff.
// Unread notifications are never pruned.
func (s *Store) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"is_read":    true,
		"created_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

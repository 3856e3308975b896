// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/hirehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

var errNoClerkID = errors.New("clerk_id is required")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByClerkID loads a user by the identity provider's user id.
func (s *Store) GetByClerkID(ctx context.Context, clerkID string) (models.User, error) {
	return s.findOne(ctx, bson.M{"clerk_id": clerkID})
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	ci := text.Fold(strings.TrimSpace(email))
	if ci == "" {
		return models.User{}, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"email_ci": ci})
}

// GetByIDs returns users keyed by id. Missing ids are absent from the map.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, cur.Err()
}

// Profile is the identity provider's view of a user.
type Profile struct {
	ClerkID   string
	Email     string
	FirstName string
	LastName  string
	FullName  string
	ImageURL  string
}

// Upsert creates or refreshes the user keyed by ClerkID and returns the
// stored document. A concurrent first insert that loses the unique-index
// race is retried once as an update.
func (s *Store) Upsert(ctx context.Context, p Profile) (models.User, error) {
	p.ClerkID = strings.TrimSpace(p.ClerkID)
	if p.ClerkID == "" {
		return models.User{}, errNoClerkID
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))
	fullName := strings.TrimSpace(p.FullName)
	if fullName == "" {
		fullName = strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"email":      email,
			"email_ci":   text.Fold(email),
			"first_name": strings.TrimSpace(p.FirstName),
			"last_name":  strings.TrimSpace(p.LastName),
			"full_name":  fullName,
			"image_url":  strings.TrimSpace(p.ImageURL),
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"clerk_id":   p.ClerkID,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	filter := bson.M{"clerk_id": p.ClerkID}

	var u models.User
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if err != nil && wafflemongo.IsDup(err) {
		err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

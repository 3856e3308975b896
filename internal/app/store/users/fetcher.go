package userstore

import (
	"context"

	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchUser resolves an external identity id to the local user. It returns
// nil if the user is not found or if any error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, clerkID string) *auth.SessionUser {
	if clerkID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":        1,
		"clerk_id":   1,
		"email":      1,
		"first_name": 1,
		"last_name":  1,
		"full_name":  1,
	})
	if err := f.users.FindOne(ctx, bson.M{"clerk_id": clerkID}, proj).Decode(&u); err != nil {
		return nil
	}

	return &auth.SessionUser{
		ID:      u.ID.Hex(),
		ClerkID: u.ClerkID,
		Name:    u.DisplayName(),
		Email:   u.Email,
	}
}

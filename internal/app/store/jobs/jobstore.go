// internal/app/store/jobs/jobstore.go
package jobstore

import (
	"context"

	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection is the conventional name of the jobs collection.
const DefaultCollection = "jobs"

// Store reads job postings from a collection owned by another service.
// Only company_id and is_active are projected.
type Store struct {
	c *mongo.Collection
}

// New binds the store to collection in db.
func New(db *mongo.Database, collection string) *Store {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{c: db.Collection(collection)}
}

// ListJobs returns every job in the collection. A missing collection yields
// an empty result.
func (s *Store) ListJobs(ctx context.Context) ([]models.Job, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "company_id": 1, "is_active": 1})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Job
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// internal/app/store/companies/companystore.go
package companystore

import (
	"context"
	"errors"
	"fmt"
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

var (
	// ErrNotFound is returned when no company matches the lookup.
	ErrNotFound = errors.New("company not found")
	// ErrInvalid wraps every input validation failure.
	ErrInvalid = errors.New("invalid company input")
)

var (
	errNoOrgID   = fmt.Errorf("%w: clerk_org_id is required", ErrInvalid)
	errBadPlan   = fmt.Errorf(`%w: plan must be "free"|"starter"|"growth"`, ErrInvalid)
	errBadLimits = fmt.Errorf("%w: seat_limit and job_limit must not be negative", ErrInvalid)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("companies")}
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Company, error) {
	var c models.Company
	if err := s.c.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Company{}, ErrNotFound
		}
		return models.Company{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Company, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByClerkOrgID loads the company bound to an external organization id.
func (s *Store) GetByClerkOrgID(ctx context.Context, clerkOrgID string) (models.Company, error) {
	return s.findOne(ctx, bson.M{"clerk_org_id": clerkOrgID})
}

// PlanUpdate carries billing state for one organization. A nil Plan leaves
// the stored plan untouched.
type PlanUpdate struct {
	ClerkOrgID string
	Plan       *models.Plan
	SeatLimit  int
	JobLimit   int
}

// Validate checks the update without touching the database.
func (u PlanUpdate) Validate() error {
	if strings.TrimSpace(u.ClerkOrgID) == "" {
		return errNoOrgID
	}
	if u.Plan != nil && !u.Plan.Valid() {
		return errBadPlan
	}
	if u.SeatLimit < 0 || u.JobLimit < 0 {
		return errBadLimits
	}
	return nil
}

// UpsertPlan patches plan and limits on the company keyed by ClerkOrgID,
// inserting a placeholder row (empty name) when none exists. The unique
// index on clerk_org_id arbitrates concurrent first inserts: the loser gets
// a duplicate-key error and is retried once as a plain patch. created is
// true only for the call that inserted the row.
func (s *Store) UpsertPlan(ctx context.Context, upd PlanUpdate) (company models.Company, created bool, err error) {
	if err := upd.Validate(); err != nil {
		return models.Company{}, false, err
	}
	orgID := strings.TrimSpace(upd.ClerkOrgID)
	now := time.Now().UTC()

	set := bson.M{
		"seat_limit": upd.SeatLimit,
		"job_limit":  upd.JobLimit,
		"updated_at": now,
	}
	if upd.Plan != nil {
		set["plan"] = *upd.Plan
	}
	filter := bson.M{"clerk_org_id": orgID}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"name":       "",
			"name_ci":    "",
			"created_at": now,
		},
	}

	res, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if !wafflemongo.IsDup(err) {
			return models.Company{}, false, err
		}
		if _, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set}); err != nil {
			return models.Company{}, false, err
		}
		res = nil
	}
	created = res != nil && res.UpsertedCount == 1

	company, err = s.GetByClerkOrgID(ctx, orgID)
	if err != nil {
		return models.Company{}, false, err
	}
	return company, created, nil
}

// EnsureForOrg makes sure a company row exists for the organization and
// sets its display name. Billing fields are never touched here.
func (s *Store) EnsureForOrg(ctx context.Context, clerkOrgID, name string) (company models.Company, created bool, err error) {
	clerkOrgID = strings.TrimSpace(clerkOrgID)
	if clerkOrgID == "" {
		return models.Company{}, false, errNoOrgID
	}
	name = strings.TrimSpace(name)
	now := time.Now().UTC()

	filter := bson.M{"clerk_org_id": clerkOrgID}
	set := bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": now,
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"seat_limit": 0,
			"job_limit":  0,
			"created_at": now,
		},
	}

	res, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if !wafflemongo.IsDup(err) {
			return models.Company{}, false, err
		}
		if _, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set}); err != nil {
			return models.Company{}, false, err
		}
		res = nil
	}
	created = res != nil && res.UpsertedCount == 1

	company, err = s.GetByClerkOrgID(ctx, clerkOrgID)
	if err != nil {
		return models.Company{}, false, err
	}
	return company, created, nil
}

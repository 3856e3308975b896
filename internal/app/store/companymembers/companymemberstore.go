// internal/app/store/companymembers/companymemberstore.go
package companymemberstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/hirehub/internal/app/system/txn"
	"github.com/dalemusser/hirehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no membership matches.
	ErrNotFound = errors.New("membership not found")
	// ErrAlreadyMember is returned when inviting a user who is pending or active.
	ErrAlreadyMember = errors.New("user is already a member of this company")
	// ErrLastOwner is returned when a change would leave the company without an active owner.
	ErrLastOwner = errors.New("company must keep at least one active owner")
	// ErrInvalid wraps input validation failures.
	ErrInvalid = errors.New("invalid membership input")
)

var errBadRole = fmt.Errorf(`%w: role must be "owner"|"admin"|"recruiter"|"member"`, ErrInvalid)

type Store struct {
	db *mongo.Database
	c  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{db: db, c: db.Collection("company_members")}
}

func pairFilter(companyID, userID primitive.ObjectID) bson.M {
	return bson.M{"company_id": companyID, "user_id": userID}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// Get returns the membership for (companyID, userID) in any status.
func (s *Store) Get(ctx context.Context, companyID, userID primitive.ObjectID) (models.CompanyMember, error) {
	var m models.CompanyMember
	if err := s.c.FindOne(ctx, pairFilter(companyID, userID)).Decode(&m); err != nil {
		return models.CompanyMember{}, notFound(err)
	}
	return m, nil
}

// ListByCompany returns every membership row of the company, all statuses.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.CompanyMember, error) {
	opts := options.Find().SetSort(bson.D{{Key: "invited_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.CompanyMember
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListActiveByRole returns active members holding role.
func (s *Store) ListActiveByRole(ctx context.Context, companyID primitive.ObjectID, role models.Role) ([]models.CompanyMember, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"company_id": companyID,
		"role":       role,
		"status":     models.MemberStatusActive,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.CompanyMember
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountActiveOwners returns the number of active owners in the company.
func (s *Store) CountActiveOwners(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"company_id": companyID,
		"role":       models.RoleOwner,
		"status":     models.MemberStatusActive,
	})
}

// Invite creates a pending membership with a fresh invite token. A removed
// member is re-invited in place; a pending or active one yields
// ErrAlreadyMember.
func (s *Store) Invite(ctx context.Context, companyID, userID primitive.ObjectID, role models.Role, invitedBy primitive.ObjectID) (models.CompanyMember, error) {
	if !role.Valid() {
		return models.CompanyMember{}, errBadRole
	}
	now := time.Now().UTC()
	token := uuid.NewString()

	existing, err := s.Get(ctx, companyID, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		m := models.CompanyMember{
			ID:          primitive.NewObjectID(),
			CompanyID:   companyID,
			UserID:      userID,
			Role:        role,
			Status:      models.MemberStatusPending,
			InvitedBy:   &invitedBy,
			InviteToken: token,
			InvitedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := s.c.InsertOne(ctx, m); err != nil {
			if wafflemongo.IsDup(err) {
				return models.CompanyMember{}, ErrAlreadyMember
			}
			return models.CompanyMember{}, err
		}
		return m, nil
	case err != nil:
		return models.CompanyMember{}, err
	}

	switch existing.Status {
	case models.MemberStatusPending, models.MemberStatusActive:
		return models.CompanyMember{}, ErrAlreadyMember
	case models.MemberStatusRemoved:
	default:
		return models.CompanyMember{}, fmt.Errorf("membership %s has unknown status %q", existing.ID.Hex(), existing.Status)
	}

	// Only a row still in "removed" is re-invited; a concurrent re-invite loses.
	var m models.CompanyMember
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": existing.ID, "status": models.MemberStatusRemoved},
		bson.M{"$set": bson.M{
			"role":         role,
			"status":       models.MemberStatusPending,
			"invited_by":   invitedBy,
			"invite_token": token,
			"invited_at":   now,
			"updated_at":   now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CompanyMember{}, ErrAlreadyMember
	}
	if err != nil {
		return models.CompanyMember{}, err
	}
	return m, nil
}

// Accept activates the pending membership identified by token, provided it
// belongs to userID. The token is consumed.
func (s *Store) Accept(ctx context.Context, token string, userID primitive.ObjectID) (models.CompanyMember, error) {
	if token == "" {
		return models.CompanyMember{}, ErrNotFound
	}
	var m models.CompanyMember
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"invite_token": token, "user_id": userID, "status": models.MemberStatusPending},
		bson.M{
			"$set":   bson.M{"status": models.MemberStatusActive, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"invite_token": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		return models.CompanyMember{}, notFound(err)
	}
	return m, nil
}

// UpsertActive records an active membership with role, creating the row if
// needed. It is used when the identity provider reports a membership.
func (s *Store) UpsertActive(ctx context.Context, companyID, userID primitive.ObjectID, role models.Role) (models.CompanyMember, error) {
	if !role.Valid() {
		return models.CompanyMember{}, errBadRole
	}
	now := time.Now().UTC()
	filter := pairFilter(companyID, userID)
	update := bson.M{
		"$set": bson.M{
			"role":       role,
			"status":     models.MemberStatusActive,
			"updated_at": now,
		},
		"$unset": bson.M{"invite_token": ""},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"invited_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var m models.CompanyMember
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&m)
	if err != nil && wafflemongo.IsDup(err) {
		err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&m)
	}
	if err != nil {
		return models.CompanyMember{}, err
	}
	return m, nil
}

// SetRole changes the role of a pending or active membership. Demoting the
// last active owner returns ErrLastOwner.
func (s *Store) SetRole(ctx context.Context, companyID, userID primitive.ObjectID, role models.Role) (models.CompanyMember, error) {
	if !role.Valid() {
		return models.CompanyMember{}, errBadRole
	}
	current, err := s.Get(ctx, companyID, userID)
	if err != nil {
		return models.CompanyMember{}, err
	}
	if current.Status == models.MemberStatusRemoved {
		return models.CompanyMember{}, ErrNotFound
	}
	if current.Role == role {
		return current, nil
	}

	now := time.Now().UTC()
	return s.applyGuarded(ctx, companyID,
		bson.M{"_id": current.ID, "status": bson.M{"$ne": models.MemberStatusRemoved}},
		bson.M{"$set": bson.M{"role": role, "updated_at": now}},
		func(m *models.CompanyMember) {
			m.Role = role
			m.UpdatedAt = now
		})
}

// Remove transitions a membership to removed. The row is kept. Removing the
// last active owner returns ErrLastOwner.
func (s *Store) Remove(ctx context.Context, companyID, userID primitive.ObjectID) (models.CompanyMember, error) {
	current, err := s.Get(ctx, companyID, userID)
	if err != nil {
		return models.CompanyMember{}, err
	}
	if current.Status == models.MemberStatusRemoved {
		return current, nil
	}

	now := time.Now().UTC()
	return s.applyGuarded(ctx, companyID,
		bson.M{"_id": current.ID, "status": bson.M{"$ne": models.MemberStatusRemoved}},
		bson.M{
			"$set":   bson.M{"status": models.MemberStatusRemoved, "updated_at": now},
			"$unset": bson.M{"invite_token": ""},
		},
		func(m *models.CompanyMember) {
			m.Status = models.MemberStatusRemoved
			m.InviteToken = ""
			m.UpdatedAt = now
		})
}

// applyGuarded applies update to the membership matched by filter and
// refuses the change when it leaves the company without an active owner.
//
// Inside a transaction every change first writes owners_changed_at on the
// company row, so two concurrent changes conflict and one is retried against
// the other's result. Without transactions the change is applied, the owners
// are recounted and the change is reverted when none is left.
func (s *Store) applyGuarded(ctx context.Context, companyID primitive.ObjectID, filter, update bson.M, apply func(*models.CompanyMember)) (models.CompanyMember, error) {
	var out models.CompanyMember
	err := txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		if _, err := s.db.Collection("companies").UpdateOne(ctx,
			bson.M{"_id": companyID},
			bson.M{"$set": bson.M{"owners_changed_at": time.Now().UTC()}},
		); err != nil {
			return err
		}

		var prev models.CompanyMember
		err := s.c.FindOneAndUpdate(ctx, filter, update,
			options.FindOneAndUpdate().SetReturnDocument(options.Before),
		).Decode(&prev)
		if err != nil {
			return notFound(err)
		}

		if prev.Role == models.RoleOwner && prev.IsActive() {
			n, err := s.CountActiveOwners(ctx, companyID)
			if err != nil {
				return err
			}
			if n == 0 {
				if err := s.restore(ctx, prev); err != nil {
					return err
				}
				return ErrLastOwner
			}
		}

		out = prev
		apply(&out)
		return nil
	})
	if err != nil {
		return models.CompanyMember{}, err
	}
	return out, nil
}

// restore puts back the role and status a guarded change overwrote.
func (s *Store) restore(ctx context.Context, prev models.CompanyMember) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": prev.ID},
		bson.M{"$set": bson.M{"role": prev.Role, "status": prev.Status, "updated_at": prev.UpdatedAt}},
	)
	return err
}

// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each collection set is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
The jobs collection belongs to another service and is never indexed here.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, set := range []struct {
		name   string
		models []mongo.IndexModel
	}{
		{"users", userIndexes()},
		{"companies", companyIndexes()},
		{"company_members", companyMemberIndexes()},
		{"notifications", notificationIndexes()},
		{"audit_events", auditIndexes()},
	} {
		if err := ensureIndexSet(ctx, db.Collection(set.name), set.models); err != nil {
			problems = append(problems, set.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolValue(b *bool) bool { return b != nil && *b }

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB return IndexOptionsConflict when an index with the same keys
// exists under a different name or with different options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

// duplicateFinders help operators clean data before a unique index can build.
var duplicateFinders = map[string]string{
	"users":           `db.users.aggregate([{ $group: { _id: "$clerk_id", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
	"companies":       `db.companies.aggregate([{ $group: { _id: "$clerk_org_id", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
	"company_members": `db.company_members.aggregate([{ $group: { _id: { c: "$company_id", u: "$user_id" }, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
}

type desired struct {
	model  mongo.IndexModel
	name   string
	unique bool
	sig    string
}

func describe(m mongo.IndexModel) desired {
	d := desired{model: m, sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = boolValue(m.Options.Unique)
	}
	return d
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func createErr(coll *mongo.Collection, d desired, err error) string {
	if isDuplicateKeyErr(err) && d.unique {
		msg := fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), d.name)
		if finder, ok := duplicateFinders[coll.Name()]; ok {
			msg += "; example finder: " + finder
		}
		return msg
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), d.name, err)
}

// replace drops ex and creates d in its place.
func replace(ctx context.Context, coll *mongo.Collection, ex existingIndex, d desired) error {
	if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
		return fmt.Errorf("%s(%s): drop %s failed: %w", coll.Name(), d.name, ex.Name, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, d.model); err != nil {
		return errors.New(createErr(coll, d, err))
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		d := describe(m)
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.Bool("unique", d.unique),
		}
		zap.L().Info("ensuring index", fields...)

		ex, ok := listExisting(ctx, coll)[d.sig]
		if !ok {
			_, err := coll.Indexes().CreateOne(ctx, m)
			if err == nil {
				zap.L().Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
				continue
			}
			if !isOptionsConflictErr(err) {
				zap.L().Warn("index ensure failed", append(fields, zap.Error(err))...)
				errs = append(errs, createErr(coll, d, err))
				continue
			}
			// Lost a race or the listing missed it; look again.
			ex, ok = listExisting(ctx, coll)[d.sig]
			if !ok {
				errs = append(errs, createErr(coll, d, err))
				continue
			}
		}

		switch {
		case boolValue(ex.Unique) != d.unique:
			// Options mismatch (e.g. upgrading to unique): drop & recreate.
			if err := replace(ctx, coll, ex, d); err != nil {
				zap.L().Warn("index recreate failed", append(fields, zap.Error(err))...)
				errs = append(errs, err.Error())
				continue
			}
			zap.L().Info("index dropped and recreated", append(fields, zap.Duration("took", time.Since(start)))...)
		case d.name != "" && ex.Name != d.name:
			if err := replace(ctx, coll, ex, d); err != nil {
				zap.L().Warn("index rename failed", append(fields, zap.String("from", ex.Name), zap.Error(err))...)
				errs = append(errs, err.Error())
				continue
			}
			zap.L().Info("index renamed", append(fields, zap.String("from", ex.Name))...)
		default:
			zap.L().Info("reusing existing index", append(fields, zap.Duration("took", time.Since(start)))...)
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// External identity id is the natural key.
		{
			Keys:    bson.D{{Key: "clerk_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_clerk_id"),
		},
		// Invite-by-email lookup (folded). Not unique: the identity provider owns email.
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_email_ci"),
		},
	}
}

func companyIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// One company per external org; arbitrates concurrent plan upserts.
		{
			Keys:    bson.D{{Key: "clerk_org_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_companies_clerk_org_id"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_companies_nameci_id"),
		},
	}
}

func companyMemberIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// At most one membership per (company, user).
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_company_members_company_user"),
		},
		// Owner counts and role listings.
		{
			Keys: bson.D{
				{Key: "company_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "role", Value: 1},
			},
			Options: options.Index().SetName("idx_company_members_company_status_role"),
		},
		// "My companies" for a user.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_company_members_user_status"),
		},
		// Invite acceptance; tokens exist only on pending rows.
		{
			Keys: bson.D{{Key: "invite_token", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"invite_token": bson.M{"$exists": true}}).
				SetName("uniq_company_members_invite_token"),
		},
	}
}

func notificationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// Unread feed and unread counts.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_read", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_notifications_user_isread_created"),
		},
		// Timeline.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_user_created"),
		},
		// Pruning of old read notifications.
		{
			Keys:    bson.D{{Key: "is_read", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_notifications_isread_created"),
		},
	}
}

func auditIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_company_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_event_timestamp"),
		},
	}
}

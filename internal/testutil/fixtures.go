package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/hirehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	return WithChiURLParams(r, map[string]string{key: value})
}

// WithChiURLParams adds several chi URL parameters to the request context.
func WithChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given identity id, email and full name.
func (f *Fixtures) CreateUser(ctx context.Context, clerkID, email, fullName string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	email = strings.ToLower(email)
	u := models.User{
		ID:        primitive.NewObjectID(),
		ClerkID:   clerkID,
		Email:     email,
		EmailCI:   text.Fold(email),
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateCompany inserts a company on the free plan with small limits.
func (f *Fixtures) CreateCompany(ctx context.Context, clerkOrgID, name string) models.Company {
	f.t.Helper()
	return f.CreateCompanyWithPlan(ctx, clerkOrgID, name, models.PlanFree, 3, 2)
}

// CreateCompanyWithPlan inserts a company with explicit billing state.
func (f *Fixtures) CreateCompanyWithPlan(ctx context.Context, clerkOrgID, name string, plan models.Plan, seats, jobs int) models.Company {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Company{
		ID:         primitive.NewObjectID(),
		ClerkOrgID: clerkOrgID,
		Name:       name,
		NameCI:     text.Fold(name),
		Plan:       &plan,
		SeatLimit:  seats,
		JobLimit:   jobs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("companies").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test company: %v", err)
	}
	return c
}

// CreateMember inserts a membership row with the given role and status.
// Pending rows receive an invite token.
func (f *Fixtures) CreateMember(ctx context.Context, companyID, userID primitive.ObjectID, role models.Role, status models.MemberStatus) models.CompanyMember {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.CompanyMember{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,
		UserID:    userID,
		Role:      role,
		Status:    status,
		InvitedAt: now,
		UpdatedAt: now,
	}
	if status == models.MemberStatusPending {
		m.InviteToken = "tok_" + primitive.NewObjectID().Hex()
	}
	if _, err := f.db.Collection("company_members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateJob inserts a job row into the default jobs collection.
func (f *Fixtures) CreateJob(ctx context.Context, companyID primitive.ObjectID, active bool) models.Job {
	f.t.Helper()

	j := models.Job{ID: primitive.NewObjectID(), CompanyID: companyID, IsActive: active}
	if _, err := f.db.Collection("jobs").InsertOne(ctx, j); err != nil {
		f.t.Fatalf("failed to create test job: %v", err)
	}
	return j
}

// CreateNotification inserts a notification, optionally already read.
func (f *Fixtures) CreateNotification(ctx context.Context, userID primitive.ObjectID, title string, read bool) models.Notification {
	f.t.Helper()

	now := time.Now().UTC()
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      models.NotificationSystem,
		Title:     title,
		Message:   title,
		IsRead:    read,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if read {
		n.ReadAt = &now
	}
	if _, err := f.db.Collection("notifications").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}

package billing_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/hirehub/internal/app/features/billing"
	"github.com/dalemusser/hirehub/internal/app/store/audit"
	notificationstore "github.com/dalemusser/hirehub/internal/app/store/notifications"
	"github.com/dalemusser/hirehub/internal/app/system/auditlog"
	"github.com/dalemusser/hirehub/internal/app/system/notify"
	"github.com/dalemusser/hirehub/internal/app/system/plansync"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"github.com/dalemusser/hirehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestHandlePlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := zap.NewNop()
	notes := notificationstore.New(db)
	h := billing.NewHandler(db,
		auditlog.New(audit.New(db), logger, auditlog.Config{}),
		notify.New(notes, logger),
		logger)

	post := func(service bool, body any) *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest(t, "POST", "/plan", body)
		if service {
			req = testutil.WithService(req, "billing")
		}
		rec := testutil.NewRecorder()
		h.HandlePlan(rec, req)
		return rec
	}

	growth := map[string]any{"clerkOrgId": "org_new", "plan": "Growth", "seatLimit": 25, "jobLimit": 10}

	post(false, growth).AssertStatus(t, http.StatusUnauthorized)
	post(true, map[string]any{"clerkOrgId": "org_new", "plan": "platinum"}).AssertStatus(t, http.StatusBadRequest)
	post(true, map[string]any{"clerkOrgId": "", "seatLimit": 1}).AssertStatus(t, http.StatusBadRequest)
	post(true, map[string]any{"clerkOrgId": "org_new", "seatLimit": -1}).AssertStatus(t, http.StatusBadRequest)

	rec := post(true, growth)
	rec.AssertStatus(t, http.StatusCreated)
	var res plansync.Result
	rec.DecodeJSON(t, &res)
	if !res.Created || res.Company.PlanName() != "growth" || res.Company.SeatLimit != 25 {
		t.Errorf("first sync: got %+v", res)
	}

	// Same request again: one row, reported as unchanged.
	rec = post(true, growth)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &res)
	if res.Created || res.Changed {
		t.Errorf("repeat sync: created=%v changed=%v, want false/false", res.Created, res.Changed)
	}
	n, err := db.Collection("companies").CountDocuments(ctx, bson.M{"clerk_org_id": "org_new"})
	if err != nil {
		t.Fatalf("count companies: %v", err)
	}
	if n != 1 {
		t.Fatalf("companies for org: got %d, want 1", n)
	}

	// A limit change on an existing company notifies its active owners.
	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "user_owner", "owner@new.test", "Olive Owner")
	fix.CreateMember(ctx, res.Company.ID, owner.ID, models.RoleOwner, models.MemberStatusActive)

	rec = post(true, map[string]any{"clerkOrgId": "org_new", "seatLimit": 50, "jobLimit": 10})
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &res)
	if !res.Changed || res.Company.SeatLimit != 50 || res.Company.PlanName() != "growth" {
		t.Errorf("limit change: got %+v", res)
	}
	unread, err := notes.CountUnread(ctx, owner.ID)
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if unread != 1 {
		t.Errorf("owner notifications: got %d, want 1", unread)
	}
}

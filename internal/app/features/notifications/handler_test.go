package notifications_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/hirehub/internal/app/features/notifications"
	notificationstore "github.com/dalemusser/hirehub/internal/app/store/notifications"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"github.com/dalemusser/hirehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	h     *notifications.Handler
	fix   *testutil.Fixtures
	user  models.User
	other models.User
}

func setup(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	return env{
		h:     notifications.NewHandler(db, zap.NewNop()),
		fix:   fix,
		user:  fix.CreateUser(ctx, "user_a", "a@hirehub.test", "Ann A"),
		other: fix.CreateUser(ctx, "user_b", "b@hirehub.test", "Ben B"),
	}
}

func TestServeList(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e.fix.CreateNotification(ctx, e.user.ID, "first", false)
	e.fix.CreateNotification(ctx, e.user.ID, "second", true)
	e.fix.CreateNotification(ctx, e.user.ID, "third", false)
	e.fix.CreateNotification(ctx, e.other.ID, "not yours", false)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCount  int
	}{
		{"all", "", http.StatusOK, 3},
		{"unread only", "?unread=true", http.StatusOK, 2},
		{"limited", "?limit=1", http.StatusOK, 1},
		{"bad limit", "?limit=abc", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/"+tt.query, e.user))
			rec.AssertStatus(t, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var list []models.Notification
			rec.DecodeJSON(t, &list)
			if len(list) != tt.wantCount {
				t.Fatalf("count: got %d, want %d", len(list), tt.wantCount)
			}
			for _, n := range list {
				if n.UserID != e.user.ID {
					t.Errorf("notification %s belongs to another user", n.ID.Hex())
				}
			}
		})
	}
}

func TestMarkReadFlow(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n1 := e.fix.CreateNotification(ctx, e.user.ID, "one", false)
	e.fix.CreateNotification(ctx, e.user.ID, "two", false)
	foreign := e.fix.CreateNotification(ctx, e.other.ID, "theirs", false)

	unreadCount := func() int64 {
		rec := testutil.NewRecorder()
		e.h.ServeUnreadCount(rec, testutil.NewAuthenticatedRequest("GET", "/unread-count", e.user))
		rec.AssertStatus(t, http.StatusOK)
		var body struct {
			Count int64 `json:"count"`
		}
		rec.DecodeJSON(t, &body)
		return body.Count
	}
	markRead := func(id string) *testutil.ResponseRecorder {
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("POST", "/"+id+"/read", e.user), "id", id)
		rec := testutil.NewRecorder()
		e.h.HandleMarkRead(rec, req)
		return rec
	}

	if got := unreadCount(); got != 2 {
		t.Fatalf("unread before: got %d, want 2", got)
	}

	rec := markRead(n1.ID.Hex())
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"changed":true`)

	rec = markRead(n1.ID.Hex())
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"changed":false`)

	markRead(foreign.ID.Hex()).AssertStatus(t, http.StatusNotFound)
	markRead(primitive.NewObjectID().Hex()).AssertStatus(t, http.StatusNotFound)
	markRead("zzz").AssertStatus(t, http.StatusBadRequest)

	if got := unreadCount(); got != 1 {
		t.Errorf("unread after one read: got %d, want 1", got)
	}

	rec = testutil.NewRecorder()
	e.h.HandleMarkAllRead(rec, testutil.NewAuthenticatedRequest("POST", "/read-all", e.user))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"updated":1`)

	if got := unreadCount(); got != 0 {
		t.Errorf("unread after read-all: got %d, want 0", got)
	}

	still, err := e.h.Store.CountUnread(ctx, e.other.ID)
	if err != nil {
		t.Fatalf("CountUnread other: %v", err)
	}
	if still != 1 {
		t.Errorf("other user's unread: got %d, want 1", still)
	}
}

func TestHandleCreate(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name       string
		service    bool
		body       map[string]any
		wantStatus int
	}{
		{"no service identity", false, map[string]any{"userId": e.user.ID.Hex(), "type": "system", "title": "x"}, http.StatusUnauthorized},
		{"by user id", true, map[string]any{"userId": e.user.ID.Hex(), "type": "system", "title": "<b>Hello</b>", "message": "<script>x</script>hi"}, http.StatusCreated},
		{"by clerk id", true, map[string]any{"clerkId": "user_a", "type": "application_received", "title": "New applicant", "link": "/jobs/1"}, http.StatusCreated},
		{"unknown clerk id", true, map[string]any{"clerkId": "user_zz", "type": "system", "title": "x"}, http.StatusNotFound},
		{"no recipient", true, map[string]any{"type": "system", "title": "x"}, http.StatusBadRequest},
		{"bad type", true, map[string]any{"userId": e.user.ID.Hex(), "type": "marketing", "title": "x"}, http.StatusBadRequest},
		{"empty title after sanitizing", true, map[string]any{"userId": e.user.ID.Hex(), "type": "system", "title": "<i></i>"}, http.StatusBadRequest},
		{"unknown field", true, map[string]any{"userId": e.user.ID.Hex(), "type": "system", "title": "x", "priority": 1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/", tt.body)
			if tt.service {
				req = testutil.WithService(req, "jobs")
			}
			rec := testutil.NewRecorder()
			e.h.HandleCreate(rec, req)
			rec.AssertStatus(t, tt.wantStatus)
		})
	}

	list, err := e.h.Store.ListByUser(ctx, e.user.ID, notificationstore.ListOptions{})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("stored: got %d, want 2", len(list))
	}
	for _, n := range list {
		if n.Type == models.NotificationSystem {
			if n.Title != "Hello" || n.Message != "hi" {
				t.Errorf("sanitized: got title %q message %q", n.Title, n.Message)
			}
		}
		if n.IsRead || n.ReadAt != nil {
			t.Errorf("new notification %s should be unread with no read_at", n.ID.Hex())
		}
	}
}

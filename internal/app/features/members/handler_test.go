package members_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/hirehub/internal/app/features/members"
	"github.com/dalemusser/hirehub/internal/app/store/audit"
	notificationstore "github.com/dalemusser/hirehub/internal/app/store/notifications"
	"github.com/dalemusser/hirehub/internal/app/system/auditlog"
	"github.com/dalemusser/hirehub/internal/app/system/notify"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"github.com/dalemusser/hirehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	h         *members.Handler
	db        *mongo.Database
	fix       *testutil.Fixtures
	notes     *notificationstore.Store
	company   models.Company
	owner     models.User
	admin     models.User
	recruiter models.User
}

func setup(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	company := fix.CreateCompany(ctx, "org_acme", "Acme")
	owner := fix.CreateUser(ctx, "user_owner", "owner@acme.test", "Olive Owner")
	admin := fix.CreateUser(ctx, "user_admin", "admin@acme.test", "Adam Admin")
	recruiter := fix.CreateUser(ctx, "user_rec", "rec@acme.test", "Rita Recruiter")
	fix.CreateMember(ctx, company.ID, owner.ID, models.RoleOwner, models.MemberStatusActive)
	fix.CreateMember(ctx, company.ID, admin.ID, models.RoleAdmin, models.MemberStatusActive)
	fix.CreateMember(ctx, company.ID, recruiter.ID, models.RoleRecruiter, models.MemberStatusActive)

	notes := notificationstore.New(db)
	logger := zap.NewNop()
	h := members.NewHandler(db,
		auditlog.New(audit.New(db), logger, auditlog.Config{}),
		notify.New(notes, logger),
		logger)

	return env{h: h, db: db, fix: fix, notes: notes, company: company, owner: owner, admin: admin, recruiter: recruiter}
}

func (e env) params(extra map[string]string) map[string]string {
	p := map[string]string{"companyID": e.company.ID.Hex()}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

func unread(t *testing.T, e env, u models.User) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := e.notes.CountUnread(ctx, u.ID)
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	return n
}

func TestServeList(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gone := e.fix.CreateUser(ctx, "user_gone", "gone@acme.test", "Gina Gone")
	e.fix.CreateMember(ctx, e.company.ID, gone.ID, models.RoleMember, models.MemberStatusRemoved)
	outsider := e.fix.CreateUser(ctx, "user_out", "out@else.test", "Oscar Outside")

	req := testutil.WithChiURLParams(testutil.NewAuthenticatedRequest("GET", "/", e.recruiter), e.params(nil))
	rec := testutil.NewRecorder()
	e.h.ServeList(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var rows []struct {
		UserID string              `json:"userId"`
		Name   string              `json:"name"`
		Status models.MemberStatus `json:"status"`
	}
	rec.DecodeJSON(t, &rows)
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	for _, r := range rows {
		if r.Status == models.MemberStatusRemoved {
			t.Errorf("removed member %s listed", r.Name)
		}
		if r.Name == "" {
			t.Errorf("row %s has no name", r.UserID)
		}
	}

	req = testutil.WithChiURLParams(testutil.NewAuthenticatedRequest("GET", "/?removed=true", e.owner), e.params(nil))
	rec = testutil.NewRecorder()
	e.h.ServeList(rec, req)
	rec.DecodeJSON(t, &rows)
	if len(rows) != 4 {
		t.Errorf("rows with removed: got %d, want 4", len(rows))
	}

	req = testutil.WithChiURLParams(testutil.NewAuthenticatedRequest("GET", "/", outsider), e.params(nil))
	rec = testutil.NewRecorder()
	e.h.ServeList(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleInvite(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	invitee := e.fix.CreateUser(ctx, "user_new", "New.Hire@acme.test", "Nia New")

	tests := []struct {
		name       string
		actor      models.User
		body       map[string]string
		wantStatus int
	}{
		{"recruiter cannot invite", e.recruiter, map[string]string{"email": "new.hire@acme.test", "role": "member"}, http.StatusForbidden},
		{"admin cannot invite owner", e.admin, map[string]string{"email": "new.hire@acme.test", "role": "owner"}, http.StatusForbidden},
		{"bad role", e.admin, map[string]string{"email": "new.hire@acme.test", "role": "boss"}, http.StatusBadRequest},
		{"missing email", e.admin, map[string]string{"role": "member"}, http.StatusBadRequest},
		{"unknown email", e.admin, map[string]string{"email": "nobody@acme.test", "role": "member"}, http.StatusNotFound},
		{"admin invites recruiter", e.admin, map[string]string{"email": "new.hire@acme.test", "role": "recruiter"}, http.StatusCreated},
		{"second invite conflicts", e.owner, map[string]string{"email": "new.hire@acme.test", "role": "member"}, http.StatusConflict},
		{"active member conflicts", e.owner, map[string]string{"email": "rec@acme.test", "role": "member"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/invite", tt.body)
			req = testutil.WithChiURLParams(testutil.WithUser(req, tt.actor), e.params(nil))
			rec := testutil.NewRecorder()
			e.h.HandleInvite(rec, req)
			rec.AssertStatus(t, tt.wantStatus)
		})
	}

	m, err := e.h.Members.Get(ctx, e.company.ID, invitee.ID)
	if err != nil {
		t.Fatalf("Get invitee membership: %v", err)
	}
	if m.Status != models.MemberStatusPending || m.Role != models.RoleRecruiter {
		t.Errorf("membership: got %s/%s, want pending/recruiter", m.Status, m.Role)
	}
	if m.InviteToken == "" {
		t.Error("pending membership has no invite token")
	}
	if n := unread(t, e, invitee); n != 1 {
		t.Errorf("invitee notifications: got %d, want 1", n)
	}

	invited, err := e.db.Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": audit.EventMemberInvited, "success": true})
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if invited != 1 {
		t.Errorf("member_invited events: got %d, want 1", invited)
	}
}

func TestHandleSetRole(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name       string
		actor      models.User
		target     models.User
		role       string
		wantStatus int
	}{
		{"recruiter cannot change roles", e.recruiter, e.admin, "member", http.StatusForbidden},
		{"admin cannot grant owner", e.admin, e.recruiter, "owner", http.StatusForbidden},
		{"admin cannot demote owner", e.admin, e.owner, "member", http.StatusForbidden},
		{"last owner cannot step down", e.owner, e.owner, "admin", http.StatusConflict},
		{"admin promotes recruiter", e.admin, e.recruiter, "admin", http.StatusOK},
		{"owner grants owner", e.owner, e.admin, "owner", http.StatusOK},
		{"second owner can now step down", e.owner, e.owner, "admin", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/role", map[string]string{"role": tt.role})
			req = testutil.WithChiURLParams(testutil.WithUser(req, tt.actor), e.params(map[string]string{"userID": tt.target.ID.Hex()}))
			rec := testutil.NewRecorder()
			e.h.HandleSetRole(rec, req)
			rec.AssertStatus(t, tt.wantStatus)
		})
	}

	if n := unread(t, e, e.recruiter); n != 1 {
		t.Errorf("recruiter role notifications: got %d, want 1", n)
	}
}

func TestHandleRemove(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := e.fix.CreateUser(ctx, "user_mem", "mem@acme.test", "Max Member")
	e.fix.CreateMember(ctx, e.company.ID, member.ID, models.RoleMember, models.MemberStatusActive)

	tests := []struct {
		name       string
		actor      models.User
		target     models.User
		wantStatus int
	}{
		{"recruiter cannot remove admin", e.recruiter, e.admin, http.StatusForbidden},
		{"admin cannot remove owner", e.admin, e.owner, http.StatusForbidden},
		{"last owner cannot leave", e.owner, e.owner, http.StatusConflict},
		{"admin removes member", e.admin, member, http.StatusOK},
		{"removing again is idempotent", e.admin, member, http.StatusOK},
		{"recruiter leaves", e.recruiter, e.recruiter, http.StatusOK},
		{"removed recruiter cannot act", e.recruiter, e.admin, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequest("POST", "/remove")
			req = testutil.WithChiURLParams(testutil.WithUser(req, tt.actor), e.params(map[string]string{"userID": tt.target.ID.Hex()}))
			rec := testutil.NewRecorder()
			e.h.HandleRemove(rec, req)
			rec.AssertStatus(t, tt.wantStatus)
		})
	}

	m, err := e.h.Members.Get(ctx, e.company.ID, member.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m.Status != models.MemberStatusRemoved {
		t.Errorf("status: got %s, want removed", m.Status)
	}
	if n := unread(t, e, member); n != 1 {
		t.Errorf("removed member notifications: got %d, want 1", n)
	}
	if n := unread(t, e, e.recruiter); n != 0 {
		t.Errorf("self-removal should not notify, got %d", n)
	}
}

func TestHandleAccept(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	invitee := e.fix.CreateUser(ctx, "user_new", "new@acme.test", "Nia New")
	pending := e.fix.CreateMember(ctx, e.company.ID, invitee.ID, models.RoleRecruiter, models.MemberStatusPending)

	accept := func(u models.User, token string) *testutil.ResponseRecorder {
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("POST", "/"+token+"/accept", u), "token", token)
		rec := testutil.NewRecorder()
		e.h.HandleAccept(rec, req)
		return rec
	}

	accept(e.admin, pending.InviteToken).AssertStatus(t, http.StatusNotFound)
	accept(invitee, "bogus").AssertStatus(t, http.StatusNotFound)
	accept(invitee, pending.InviteToken).AssertStatus(t, http.StatusOK)
	accept(invitee, pending.InviteToken).AssertStatus(t, http.StatusNotFound)

	m, err := e.h.Members.Get(ctx, e.company.ID, invitee.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m.Status != models.MemberStatusActive || m.InviteToken != "" {
		t.Errorf("membership: got status %s token %q, want active with no token", m.Status, m.InviteToken)
	}
	if n := unread(t, e, e.owner); n != 1 {
		t.Errorf("owner notifications: got %d, want 1", n)
	}
	if n := unread(t, e, e.admin); n != 1 {
		t.Errorf("admin notifications: got %d, want 1", n)
	}
	if n := unread(t, e, e.recruiter); n != 0 {
		t.Errorf("recruiter notifications: got %d, want 0", n)
	}
}

func TestHandleInvite_ReinvitesRemovedMember(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	former := e.fix.CreateUser(ctx, "user_former", "former@acme.test", "Fay Former")
	e.fix.CreateMember(ctx, e.company.ID, former.ID, models.RoleAdmin, models.MemberStatusRemoved)

	req := testutil.NewJSONRequest(t, "POST", "/invite", map[string]string{"email": "former@acme.test", "role": "member"})
	req = testutil.WithChiURLParams(testutil.WithUser(req, e.owner), e.params(nil))
	rec := testutil.NewRecorder()
	e.h.HandleInvite(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	m, err := e.h.Members.Get(ctx, e.company.ID, former.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m.Status != models.MemberStatusPending || m.Role != models.RoleMember {
		t.Errorf("membership: got %s/%s, want pending/member", m.Status, m.Role)
	}
	if _, err := e.h.Members.Accept(ctx, m.InviteToken, former.ID); err != nil {
		t.Errorf("Accept re-invite: %v", err)
	}
}

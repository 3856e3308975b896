package companypolicy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/hirehub/internal/app/policy/companypolicy"
	companystore "github.com/dalemusser/hirehub/internal/app/store/companies"
	companymemberstore "github.com/dalemusser/hirehub/internal/app/store/companymembers"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memberKey struct{ company, user primitive.ObjectID }

type fakeCompanies struct {
	rows map[primitive.ObjectID]models.Company
	err  error
}

func (f *fakeCompanies) GetByID(_ context.Context, id primitive.ObjectID) (models.Company, error) {
	if f.err != nil {
		return models.Company{}, f.err
	}
	c, ok := f.rows[id]
	if !ok {
		return models.Company{}, companystore.ErrNotFound
	}
	return c, nil
}

type fakeMembers struct {
	rows  map[memberKey]models.CompanyMember
	err   error
	calls int
}

func (f *fakeMembers) Get(_ context.Context, companyID, userID primitive.ObjectID) (models.CompanyMember, error) {
	f.calls++
	if f.err != nil {
		return models.CompanyMember{}, f.err
	}
	m, ok := f.rows[memberKey{companyID, userID}]
	if !ok {
		return models.CompanyMember{}, companymemberstore.ErrNotFound
	}
	return m, nil
}

func (f *fakeMembers) add(companyID, userID primitive.ObjectID, role models.Role, status models.MemberStatus) {
	if f.rows == nil {
		f.rows = map[memberKey]models.CompanyMember{}
	}
	f.rows[memberKey{companyID, userID}] = models.CompanyMember{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,
		UserID:    userID,
		Role:      role,
		Status:    status,
	}
}

func TestRequireCompany(t *testing.T) {
	existing := models.Company{ID: primitive.NewObjectID(), Name: "Acme", SeatLimit: 3}
	g := companypolicy.New(&fakeCompanies{rows: map[primitive.ObjectID]models.Company{existing.ID: existing}}, &fakeMembers{})
	ctx := context.Background()

	got, err := g.RequireCompany(ctx, existing.ID)
	if err != nil {
		t.Fatalf("RequireCompany: %v", err)
	}
	if got.ID != existing.ID || got.Name != "Acme" || got.SeatLimit != 3 {
		t.Errorf("got %+v, want %+v", got, existing)
	}

	if _, err := g.RequireCompany(ctx, primitive.NewObjectID()); !errors.Is(err, companypolicy.ErrCompanyNotFound) {
		t.Errorf("err = %v, want ErrCompanyNotFound", err)
	}
}

func TestRequireCompany_StoreFailurePropagates(t *testing.T) {
	boom := errors.New("connection reset")
	g := companypolicy.New(&fakeCompanies{err: boom}, &fakeMembers{})

	_, err := g.RequireCompany(context.Background(), primitive.NewObjectID())
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped store error", err)
	}
	if errors.Is(err, companypolicy.ErrCompanyNotFound) {
		t.Error("store failure must not look like not found")
	}
}

func TestRequireActiveMembership(t *testing.T) {
	companyID := primitive.NewObjectID()
	tests := []struct {
		name    string
		status  models.MemberStatus
		present bool
		wantErr error
	}{
		{"active", models.MemberStatusActive, true, nil},
		{"pending", models.MemberStatusPending, true, companypolicy.ErrAccessDenied},
		{"removed", models.MemberStatusRemoved, true, companypolicy.ErrAccessDenied},
		{"unknown status", models.MemberStatus("suspended"), true, companypolicy.ErrAccessDenied},
		{"absent", "", false, companypolicy.ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := primitive.NewObjectID()
			members := &fakeMembers{}
			if tt.present {
				members.add(companyID, userID, models.RoleRecruiter, tt.status)
			}
			g := companypolicy.New(&fakeCompanies{}, members)

			m, err := g.RequireActiveMembership(context.Background(), companyID, userID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (m.UserID != userID || !m.IsActive()) {
				t.Errorf("unexpected membership %+v", m)
			}
			if members.calls != 1 {
				t.Errorf("expected exactly one store read, got %d", members.calls)
			}
		})
	}
}

func TestRequireActiveMembership_StoreFailureIsNotAccessDenied(t *testing.T) {
	boom := errors.New("timeout")
	g := companypolicy.New(&fakeCompanies{}, &fakeMembers{err: boom})

	_, err := g.RequireActiveMembership(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	if !errors.Is(err, boom) || errors.Is(err, companypolicy.ErrAccessDenied) {
		t.Errorf("err = %v, want wrapped store error", err)
	}
}

func TestRequireActiveMembership_RereadsEveryCall(t *testing.T) {
	companyID, userID := primitive.NewObjectID(), primitive.NewObjectID()
	members := &fakeMembers{}
	members.add(companyID, userID, models.RoleAdmin, models.MemberStatusActive)
	g := companypolicy.New(&fakeCompanies{}, members)
	ctx := context.Background()

	if _, err := g.RequireActiveMembership(ctx, companyID, userID); err != nil {
		t.Fatalf("first call: %v", err)
	}
	members.add(companyID, userID, models.RoleAdmin, models.MemberStatusRemoved)
	if _, err := g.RequireActiveMembership(ctx, companyID, userID); !errors.Is(err, companypolicy.ErrAccessDenied) {
		t.Errorf("second call err = %v, want ErrAccessDenied after removal", err)
	}
}

func TestRequireCompanyRole(t *testing.T) {
	companyID := primitive.NewObjectID()
	managers := []models.Role{models.RoleOwner, models.RoleAdmin}
	tests := []struct {
		name    string
		role    models.Role
		status  models.MemberStatus
		allowed []models.Role
		wantErr error
	}{
		{"owner allowed", models.RoleOwner, models.MemberStatusActive, managers, nil},
		{"admin allowed", models.RoleAdmin, models.MemberStatusActive, managers, nil},
		{"recruiter denied", models.RoleRecruiter, models.MemberStatusActive, managers, companypolicy.ErrAccessDenied},
		{"member denied", models.RoleMember, models.MemberStatusActive, managers, companypolicy.ErrAccessDenied},
		{"pending owner denied", models.RoleOwner, models.MemberStatusPending, managers, companypolicy.ErrAccessDenied},
		{"empty allowed set", models.RoleOwner, models.MemberStatusActive, nil, companypolicy.ErrAccessDenied},
		{"unknown role denied", models.Role("root"), models.MemberStatusActive, []models.Role{"root"}, companypolicy.ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := primitive.NewObjectID()
			members := &fakeMembers{}
			members.add(companyID, userID, tt.role, tt.status)
			g := companypolicy.New(&fakeCompanies{}, members)

			m, err := g.RequireCompanyRole(context.Background(), companyID, userID, tt.allowed...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && m.Role != tt.role {
				t.Errorf("role = %q, want %q", m.Role, tt.role)
			}
		})
	}
}

func TestCanAssignRole(t *testing.T) {
	tests := []struct {
		actor, from, to models.Role
		want            bool
	}{
		{models.RoleOwner, models.RoleMember, models.RoleOwner, true},
		{models.RoleOwner, models.RoleOwner, models.RoleAdmin, true},
		{models.RoleAdmin, models.RoleMember, models.RoleRecruiter, true},
		{models.RoleAdmin, models.RoleMember, models.RoleOwner, false},
		{models.RoleAdmin, models.RoleOwner, models.RoleAdmin, false},
		{models.RoleRecruiter, models.RoleMember, models.RoleRecruiter, false},
		{models.RoleMember, models.RoleMember, models.RoleAdmin, false},
	}
	for _, tt := range tests {
		if got := companypolicy.CanAssignRole(tt.actor, tt.from, tt.to); got != tt.want {
			t.Errorf("CanAssignRole(%s, %s→%s) = %v, want %v", tt.actor, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCanRemove(t *testing.T) {
	self := primitive.NewObjectID()
	other := primitive.NewObjectID()
	tests := []struct {
		name       string
		actorRole  models.Role
		target     primitive.ObjectID
		targetRole models.Role
		want       bool
	}{
		{"self as member", models.RoleMember, self, models.RoleMember, true},
		{"admin removes recruiter", models.RoleAdmin, other, models.RoleRecruiter, true},
		{"admin removes owner", models.RoleAdmin, other, models.RoleOwner, false},
		{"owner removes owner", models.RoleOwner, other, models.RoleOwner, true},
		{"recruiter removes member", models.RoleRecruiter, other, models.RoleMember, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := companypolicy.CanRemove(self, tt.actorRole, tt.target, tt.targetRole); got != tt.want {
				t.Errorf("CanRemove = %v, want %v", got, tt.want)
			}
		})
	}
}

// Package companyqueries provides the read-side views of a company: the
// caller's context within it and its usage counts.
package companyqueries

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/hirehub/internal/app/policy/companypolicy"
	companystore "github.com/dalemusser/hirehub/internal/app/store/companies"
	companymemberstore "github.com/dalemusser/hirehub/internal/app/store/companymembers"
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Companies is the company store surface used here.
type Companies interface {
	companypolicy.CompanyGetter
	GetByClerkOrgID(ctx context.Context, clerkOrgID string) (models.Company, error)
}

// Members is the membership store surface used here.
type Members interface {
	companypolicy.MembershipGetter
	ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.CompanyMember, error)
}

// JobSource lists job postings. The jobs collection belongs to another
// service and may not be provisioned; NoJobs stands in when it is absent.
type JobSource interface {
	ListJobs(ctx context.Context) ([]models.Job, error)
}

// NoJobs is the JobSource used when the jobs collection is disabled.
type NoJobs struct{}

// ListJobs always returns an empty list.
func (NoJobs) ListJobs(context.Context) ([]models.Job, error) { return nil, nil }

// CompanyContext is what the UI needs to render a company for the caller.
type CompanyContext struct {
	CompanyID primitive.ObjectID  `json:"companyId"`
	Name      string              `json:"name"`
	Role      models.Role         `json:"role"`
	Status    models.MemberStatus `json:"status,omitempty"` // empty when the caller has no membership row
	Plan      *models.Plan        `json:"plan,omitempty"`
	SeatLimit int                 `json:"seatLimit"`
	JobLimit  int                 `json:"jobLimit"`
}

// Usage holds the counts used for plan-limit checks.
type Usage struct {
	ActiveMemberCount  int `json:"activeMemberCount"`
	InvitedMemberCount int `json:"invitedMemberCount"`
	ActiveJobCount     int `json:"activeJobCount"`
	TotalJobCount      int `json:"totalJobCount"`
}

// Service answers company context and usage queries.
type Service struct {
	companies Companies
	members   Members
	jobs      JobSource
	guard     *companypolicy.Guard
	log       *zap.Logger
}

// New builds a Service. A nil jobs source is treated as NoJobs.
func New(companies Companies, members Members, jobs JobSource, logger *zap.Logger) *Service {
	if jobs == nil {
		jobs = NoJobs{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		companies: companies,
		members:   members,
		jobs:      jobs,
		guard:     companypolicy.New(companies, members),
		log:       logger,
	}
}

// GetMyCompanyContext returns the caller's view of the company bound to
// clerkOrgID. It returns (nil, nil) when the caller is not signed in or the
// company does not exist. A caller without a membership row is reported
// with role "member"; what such a viewer may see is decided by the UI.
func (s *Service) GetMyCompanyContext(ctx context.Context, caller *auth.SessionUser, clerkOrgID string) (*CompanyContext, error) {
	if caller == nil || clerkOrgID == "" {
		return nil, nil
	}
	company, err := s.companies.GetByClerkOrgID(ctx, clerkOrgID)
	if errors.Is(err, companystore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load company for org %q: %w", clerkOrgID, err)
	}

	out := &CompanyContext{
		CompanyID: company.ID,
		Name:      company.Name,
		Role:      models.RoleMember,
		Plan:      company.Plan,
		SeatLimit: company.SeatLimit,
		JobLimit:  company.JobLimit,
	}

	userID, err := caller.ObjectID()
	if err != nil {
		return nil, fmt.Errorf("caller id %q: %w", caller.ID, err)
	}
	m, err := s.members.Get(ctx, company.ID, userID)
	switch {
	case errors.Is(err, companymemberstore.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load membership: %w", err)
	default:
		out.Role = m.Role
		out.Status = m.Status
	}
	return out, nil
}

// GetCompanyUsage returns usage for any company without a membership check.
// It is reserved for trusted internal callers; svc must be a verified
// service identity.
func (s *Service) GetCompanyUsage(ctx context.Context, svc auth.ServiceIdentity, companyID primitive.ObjectID) (Usage, error) {
	if err := svc.Check(); err != nil {
		return Usage{}, err
	}
	return s.aggregate(ctx, companyID)
}

// GetMyCompanyUsage returns usage for a company the user is an active
// member of. Authorization runs before any aggregation.
func (s *Service) GetMyCompanyUsage(ctx context.Context, userID, companyID primitive.ObjectID) (Usage, error) {
	if _, err := s.guard.RequireActiveMembership(ctx, companyID, userID); err != nil {
		return Usage{}, err
	}
	return s.aggregate(ctx, companyID)
}

func (s *Service) aggregate(ctx context.Context, companyID primitive.ObjectID) (Usage, error) {
	var u Usage

	members, err := s.members.ListByCompany(ctx, companyID)
	if err != nil {
		return Usage{}, fmt.Errorf("list memberships: %w", err)
	}
	for _, m := range members {
		switch m.Status {
		case models.MemberStatusActive:
			u.ActiveMemberCount++
		case models.MemberStatusPending, models.MemberStatusRemoved:
			u.InvitedMemberCount++
		default:
			s.log.Warn("membership with unknown status ignored in usage",
				zap.String("company_id", companyID.Hex()),
				zap.String("membership_id", m.ID.Hex()),
				zap.String("status", string(m.Status)))
		}
	}

	// Jobs are optional: a failing source degrades to zero counts.
	jobs, err := s.jobs.ListJobs(ctx)
	if err != nil {
		s.log.Warn("job source unavailable; reporting zero job usage",
			zap.String("company_id", companyID.Hex()),
			zap.Error(err))
		return u, nil
	}
	for _, j := range jobs {
		if j.CompanyID != companyID {
			continue
		}
		u.TotalJobCount++
		if j.IsActive {
			u.ActiveJobCount++
		}
	}
	return u, nil
}

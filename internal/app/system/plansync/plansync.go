// Package plansync reconciles a company's billing plan and limits from the
// billing provider.
package plansync

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	companystore "github.com/dalemusser/hirehub/internal/app/store/companies"
	"github.com/dalemusser/hirehub/internal/app/system/auditlog"
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/notify"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Companies is the company store surface used by the synchronizer.
type Companies interface {
	GetByClerkOrgID(ctx context.Context, clerkOrgID string) (models.Company, error)
	UpsertPlan(ctx context.Context, upd companystore.PlanUpdate) (models.Company, bool, error)
}

// Owners lists active members holding a role.
type Owners interface {
	ListActiveByRole(ctx context.Context, companyID primitive.ObjectID, role models.Role) ([]models.CompanyMember, error)
}

// Request is one plan reconciliation.
type Request struct {
	ClerkOrgID string       `json:"clerkOrgId"`
	Plan       *models.Plan `json:"plan,omitempty"`
	SeatLimit  int          `json:"seatLimit"`
	JobLimit   int          `json:"jobLimit"`
}

// Result reports what Sync did.
type Result struct {
	Company models.Company `json:"company"`
	Created bool           `json:"created"`
	Changed bool           `json:"changed"`
}

// Synchronizer applies billing state to companies.
type Synchronizer struct {
	companies Companies
	owners    Owners
	audit     *auditlog.Logger
	notifier  *notify.Notifier
	log       *zap.Logger
}

// New builds a Synchronizer. audit and notifier may be nil.
func New(companies Companies, owners Owners, audit *auditlog.Logger, notifier *notify.Notifier, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		companies: companies,
		owners:    owners,
		audit:     audit,
		notifier:  notifier,
		log:       logger,
	}
}

// Sync upserts plan and limits for req.ClerkOrgID. It performs no role
// check: svc must be a verified internal service identity, which the
// transport establishes. Calling Sync twice with the same request leaves
// exactly one company row.
func (s *Synchronizer) Sync(ctx context.Context, svc auth.ServiceIdentity, req Request) (Result, error) {
	if err := svc.Check(); err != nil {
		return Result{}, err
	}
	upd := companystore.PlanUpdate{
		ClerkOrgID: req.ClerkOrgID,
		Plan:       req.Plan,
		SeatLimit:  req.SeatLimit,
		JobLimit:   req.JobLimit,
	}
	if err := upd.Validate(); err != nil {
		return Result{}, err
	}

	// The prior row is read only to decide whether owners should hear
	// about the change; the write itself never branches on it.
	before, err := s.companies.GetByClerkOrgID(ctx, req.ClerkOrgID)
	hadBefore := err == nil
	if err != nil && !errors.Is(err, companystore.ErrNotFound) {
		return Result{}, fmt.Errorf("load company for org %q: %w", req.ClerkOrgID, err)
	}

	company, created, err := s.companies.UpsertPlan(ctx, upd)
	if err != nil {
		return Result{}, fmt.Errorf("upsert plan for org %q: %w", req.ClerkOrgID, err)
	}
	changed := created || !hadBefore || billingChanged(before, company)

	s.audit.PlanSynced(ctx, svc.Name(), company, created)
	s.log.Info("company plan synced",
		zap.String("service", svc.Name()),
		zap.String("company_id", company.ID.Hex()),
		zap.String("clerk_org_id", company.ClerkOrgID),
		zap.String("plan", company.PlanName()),
		zap.Int("seat_limit", company.SeatLimit),
		zap.Int("job_limit", company.JobLimit),
		zap.Bool("created", created),
		zap.Bool("changed", changed))

	if changed && !created {
		s.notifyOwners(ctx, company)
	}
	return Result{Company: company, Created: created, Changed: changed}, nil
}

func billingChanged(a, b models.Company) bool {
	return a.PlanName() != b.PlanName() || a.SeatLimit != b.SeatLimit || a.JobLimit != b.JobLimit
}

func (s *Synchronizer) notifyOwners(ctx context.Context, c models.Company) {
	if s.notifier == nil || s.owners == nil {
		return
	}
	owners, err := s.owners.ListActiveByRole(ctx, c.ID, models.RoleOwner)
	if err != nil {
		s.log.Warn("could not list owners for plan notification",
			zap.String("company_id", c.ID.Hex()), zap.Error(err))
		return
	}
	ids := make([]primitive.ObjectID, 0, len(owners))
	for _, o := range owners {
		ids = append(ids, o.UserID)
	}
	plan := c.PlanName()
	if plan == "" {
		plan = "unchanged"
	}
	s.notifier.Notify(ctx, notify.Message{
		Type:    models.NotificationPlanChanged,
		Title:   "Your plan was updated",
		Message: fmt.Sprintf("Plan %s: %d seats, %d jobs.", plan, c.SeatLimit, c.JobLimit),
		Link:    "/settings/billing",
		Metadata: map[string]string{
			"company_id": c.ID.Hex(),
			"plan":       c.PlanName(),
			"seat_limit": strconv.Itoa(c.SeatLimit),
			"job_limit":  strconv.Itoa(c.JobLimit),
		},
	}, ids...)
}

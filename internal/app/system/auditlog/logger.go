// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/hirehub/internal/app/store/audit"
	"github.com/dalemusser/hirehub/internal/app/system/ratelimit"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination settings for a category.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off" // disabled
)

// Config holds audit logging configuration. Each field takes one of
// "all", "db", "log" or "off"; empty means "all".
type Config struct {
	// Admin covers membership changes made by signed-in users.
	Admin string
	// Billing covers plan synchronization.
	Billing string
	// Identity covers user/org/membership sync from the identity provider.
	Identity string
}

// ValidSetting reports whether s is an accepted destination value.
func ValidSetting(s string) bool {
	switch s {
	case "", All, DB, Log, Off:
		return true
	}
	return false
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// clientIP extracts the client IP from the request. A nil request yields "".
func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	return ratelimit.ClientIP(r)
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.CompanyID != nil {
		fields = append(fields, zap.String("company_id", event.CompanyID.Hex()))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.Service != "" {
		fields = append(fields, zap.String("service", event.Service))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) settingFor(category string) string {
	var setting string
	switch category {
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategoryBilling:
		setting = l.config.Billing
	case audit.CategoryIdentity:
		setting = l.config.Identity
	}
	if setting == "" {
		return All
	}
	return setting
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so tests and optional wiring can pass nil.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.settingFor(event.Category)
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}

	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Membership Events ---

// MemberInvited logs an invitation created by actorID.
func (l *Logger) MemberInvited(ctx context.Context, r *http.Request, companyID, actorID, userID primitive.ObjectID, role models.Role) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventMemberInvited,
		CompanyID: &companyID,
		UserID:    &userID,
		ActorID:   &actorID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"role": string(role)},
	})
}

// MemberJoined logs an accepted invitation.
func (l *Logger) MemberJoined(ctx context.Context, r *http.Request, companyID, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventMemberJoined,
		CompanyID: &companyID,
		UserID:    &userID,
		ActorID:   &userID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
	})
}

// MemberRoleChanged logs a role change.
func (l *Logger) MemberRoleChanged(ctx context.Context, r *http.Request, companyID, actorID, userID primitive.ObjectID, from, to models.Role) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventMemberRoleChanged,
		CompanyID: &companyID,
		UserID:    &userID,
		ActorID:   &actorID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details: map[string]string{
			"from": string(from),
			"to":   string(to),
		},
	})
}

// MemberRemoved logs a removal. actorID equals userID when members leave.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, companyID, actorID, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventMemberRemoved,
		CompanyID: &companyID,
		UserID:    &userID,
		ActorID:   &actorID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"self": strconv.FormatBool(actorID == userID)},
	})
}

// MemberChangeDenied logs a refused membership change, e.g. removing the last owner.
func (l *Logger) MemberChangeDenied(ctx context.Context, r *http.Request, companyID, actorID, userID primitive.ObjectID, eventType, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     eventType,
		CompanyID:     &companyID,
		UserID:        &userID,
		ActorID:       &actorID,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		Success:       false,
		FailureReason: reason,
	})
}

// --- Billing Events ---

// PlanSynced logs a plan reconciliation performed on behalf of service.
func (l *Logger) PlanSynced(ctx context.Context, service string, c models.Company, created bool) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryBilling,
		EventType: audit.EventPlanSynced,
		CompanyID: &c.ID,
		Service:   service,
		Success:   true,
		Details: map[string]string{
			"clerk_org_id": c.ClerkOrgID,
			"plan":         c.PlanName(),
			"seat_limit":   strconv.Itoa(c.SeatLimit),
			"job_limit":    strconv.Itoa(c.JobLimit),
			"created":      strconv.FormatBool(created),
		},
	})
}

// --- Identity Events ---

// UserSynced logs a user upsert from the identity provider.
func (l *Logger) UserSynced(ctx context.Context, service string, u models.User) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryIdentity,
		EventType: audit.EventUserSynced,
		UserID:    &u.ID,
		Service:   service,
		Success:   true,
		Details:   map[string]string{"clerk_id": u.ClerkID},
	})
}

// CompanySynced logs creation or rename of a company from the identity provider.
func (l *Logger) CompanySynced(ctx context.Context, service string, c models.Company, created bool) {
	eventType := audit.EventCompanyRenamed
	if created {
		eventType = audit.EventCompanyCreated
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryIdentity,
		EventType: eventType,
		CompanyID: &c.ID,
		Service:   service,
		Success:   true,
		Details: map[string]string{
			"clerk_org_id": c.ClerkOrgID,
			"name":         c.Name,
		},
	})
}

// MembershipSynced logs a membership reported (or withdrawn) by the identity provider.
func (l *Logger) MembershipSynced(ctx context.Context, service string, m models.CompanyMember) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryIdentity,
		EventType: audit.EventMembershipSynced,
		CompanyID: &m.CompanyID,
		UserID:    &m.UserID,
		Service:   service,
		Success:   true,
		Details: map[string]string{
			"role":   string(m.Role),
			"status": string(m.Status),
		},
	})
}

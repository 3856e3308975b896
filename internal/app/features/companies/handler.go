// internal/app/features/companies/handler.go
package companies

import (
	"github.com/dalemusser/hirehub/internal/app/policy/companypolicy"
	"github.com/dalemusser/hirehub/internal/app/store/audit"
	companystore "github.com/dalemusser/hirehub/internal/app/store/companies"
	companymemberstore "github.com/dalemusser/hirehub/internal/app/store/companymembers"
	"github.com/dalemusser/hirehub/internal/app/store/queries/companyqueries"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves company context, usage and audit history.
type Handler struct {
	Queries *companyqueries.Service
	Guard   *companypolicy.Guard
	Audit   *audit.Store
	Log     *zap.Logger
}

// NewHandler wires the company read side. jobs may be nil when the jobs
// collection is not provisioned.
func NewHandler(db *mongo.Database, jobs companyqueries.JobSource, logger *zap.Logger) *Handler {
	companies := companystore.New(db)
	members := companymemberstore.New(db)
	return &Handler{
		Queries: companyqueries.New(companies, members, jobs, logger),
		Guard:   companypolicy.New(companies, members),
		Audit:   audit.New(db),
		Log:     logger,
	}
}

// internal/app/features/billing/plan.go
package billing

import (
	"context"
	"errors"
	"net/http"

	companystore "github.com/dalemusser/hirehub/internal/app/store/companies"
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"github.com/dalemusser/hirehub/internal/app/system/plansync"
	"github.com/dalemusser/hirehub/internal/app/system/timeouts"
	"github.com/dalemusser/hirehub/internal/domain/models"
	"go.uber.org/zap"
)

// planRequest mirrors plansync.Request with the plan as free text. A
// missing plan leaves the stored plan untouched.
type planRequest struct {
	ClerkOrgID string  `json:"clerkOrgId"`
	Plan       *string `json:"plan"`
	SeatLimit  int     `json:"seatLimit"`
	JobLimit   int     `json:"jobLimit"`
}

// HandlePlan handles POST /internal/billing/plan.
//
// Body: {"clerkOrgId":"org_…","plan":"growth","seatLimit":25,"jobLimit":10}
// Responds 201 when the company row was created, 200 otherwise.
func (h *Handler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	var body planRequest
	if err := httpjson.Decode(r, &body); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := plansync.Request{
		ClerkOrgID: body.ClerkOrgID,
		SeatLimit:  body.SeatLimit,
		JobLimit:   body.JobLimit,
	}
	if body.Plan != nil {
		p, ok := models.ParsePlan(*body.Plan)
		if !ok {
			httpjson.Error(w, http.StatusBadRequest, "invalid plan")
			return
		}
		req.Plan = &p
	}

	svc := auth.ServiceFrom(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	res, err := h.Sync.Sync(ctx, svc, req)
	switch {
	case errors.Is(err, auth.ErrServiceIdentityRequired):
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	case errors.Is(err, companystore.ErrInvalid):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		httpjson.Internal(w, h.Log, "plan sync failed", err,
			zap.String("clerk_org_id", body.ClerkOrgID),
			zap.String("service", svc.Name()))
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	httpjson.Write(w, status, res)
}

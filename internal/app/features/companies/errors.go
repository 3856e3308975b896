package companies

import (
	"errors"
	"net/http"

	"github.com/dalemusser/hirehub/internal/app/policy/companypolicy"
	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

func (h *Handler) writeErr(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	switch {
	case errors.Is(err, companypolicy.ErrCompanyNotFound):
		httpjson.Error(w, http.StatusNotFound, "company not found")
	case errors.Is(err, companypolicy.ErrAccessDenied):
		httpjson.Error(w, http.StatusForbidden, "access denied")
	case errors.Is(err, auth.ErrServiceIdentityRequired):
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
	default:
		httpjson.Internal(w, h.Log, msg, err, fields...)
	}
}

package members

import (
	"errors"
	"net/http"

	"github.com/dalemusser/hirehub/internal/app/policy/companypolicy"
	companymemberstore "github.com/dalemusser/hirehub/internal/app/store/companymembers"
	userstore "github.com/dalemusser/hirehub/internal/app/store/users"
	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

func (h *Handler) writeErr(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	switch {
	case errors.Is(err, companypolicy.ErrCompanyNotFound):
		httpjson.Error(w, http.StatusNotFound, "company not found")
	case errors.Is(err, companypolicy.ErrAccessDenied):
		httpjson.Error(w, http.StatusForbidden, "access denied")
	case errors.Is(err, companymemberstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "membership not found")
	case errors.Is(err, userstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "no user with that email")
	case errors.Is(err, companymemberstore.ErrAlreadyMember):
		httpjson.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, companymemberstore.ErrLastOwner):
		httpjson.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, companymemberstore.ErrInvalid):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		httpjson.Internal(w, h.Log, msg, err, fields...)
	}
}

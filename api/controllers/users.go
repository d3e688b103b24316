package controllers

import (
	"net/http"

	"github.com/vigneshnair/bazaarly-backend/api/middleware"
	"github.com/vigneshnair/bazaarly-backend/api/responses"
	userssvc "github.com/vigneshnair/bazaarly-backend/internal/users"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
	"github.com/vigneshnair/bazaarly-backend/pkg/logger"
)

// Me resolves the authenticated caller's profile.
func Me(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		account, err := svc.Me(r.Context(), middleware.AccountIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

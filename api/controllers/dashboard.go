package controllers

import (
	"net/http"

	"github.com/bawasa/bawasa-backend/api/responses"
	"github.com/bawasa/bawasa-backend/internal/dashboard"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
	"github.com/bawasa/bawasa-backend/pkg/logger"
)

// DashboardSummary returns the admin landing-page aggregates.
func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bawasa/bawasa-backend/api/responses"
	"github.com/bawasa/bawasa-backend/api/validators"
	"github.com/bawasa/bawasa-backend/internal/meterchange"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
	"github.com/bawasa/bawasa-backend/pkg/logger"
)

type meterChangeRequest struct {
	NewStartingReading  *float64 `json:"newStartingReading" validate:"required"`
	EffectiveDate       string   `json:"effectiveDate" validate:"required"`
	Reason              string   `json:"reason" validate:"required"`
	ReadingBeforeChange *float64 `json:"readingBeforeChange,omitempty"`
}

// ChangeMeter records a physical meter replacement: it writes the closing
// reading for the old meter and reports the reconciliation figures.
func ChangeMeter(svc meterchange.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meter change service unavailable"))
			return
		}

		var req meterChangeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ChangeMeter(r.Context(), meterchange.Input{
			ConsumerID:          chi.URLParam(r, "consumerId"),
			NewStartingReading:  req.NewStartingReading,
			EffectiveDate:       req.EffectiveDate,
			Reason:              validators.SanitizeString(req.Reason, 300),
			ReadingBeforeChange: req.ReadingBeforeChange,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMessage(w, http.StatusCreated, result, "meter change recorded")
	}
}

package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bawasa/bawasa-backend/api/responses"
	"github.com/bawasa/bawasa-backend/api/validators"
	"github.com/bawasa/bawasa-backend/internal/readings"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
	"github.com/bawasa/bawasa-backend/pkg/logger"
	"github.com/bawasa/bawasa-backend/pkg/pagination"
)

type submitReadingRequest struct {
	ConsumerID     string  `json:"consumerId" validate:"required"`
	PresentReading float64 `json:"presentReading" validate:"gte=0"`
	Remarks        string  `json:"remarks,omitempty"`
}

// SubmitReading records one routine field reading.
func SubmitReading(svc readings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reading service unavailable"))
			return
		}

		var req submitReadingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reading, err := svc.Submit(r.Context(), readings.SubmitInput{
			ConsumerID:     req.ConsumerID,
			PresentReading: req.PresentReading,
			Remarks:        validators.SanitizeString(req.Remarks, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, reading)
	}
}

// ListReadings pages through one consumer's reading history.
func ListReadings(svc readings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reading service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), readings.ListParams{
			ConsumerID: chi.URLParam(r, "consumerId"),
			Limit:      limit,
			Cursor:     r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bawasa/bawasa-backend/api/responses"
	"github.com/bawasa/bawasa-backend/api/validators"
	"github.com/bawasa/bawasa-backend/internal/billing"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
	"github.com/bawasa/bawasa-backend/pkg/logger"
	"github.com/bawasa/bawasa-backend/pkg/pagination"
)

// GenerateBill turns the consumer's oldest unbilled reading into a bill.
func GenerateBill(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		bill, err := svc.GenerateBill(r.Context(), chi.URLParam(r, "consumerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, bill)
	}
}

// GetBill loads one bill by id.
func GetBill(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		bill, err := svc.Get(r.Context(), chi.URLParam(r, "billId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bill)
	}
}

// ListBills pages through bills filtered by consumer and status.
func ListBills(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), billing.ListParams{
			ConsumerID: r.URL.Query().Get("consumerId"),
			Status:     r.URL.Query().Get("status"),
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

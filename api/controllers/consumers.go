package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bawasa/bawasa-backend/api/responses"
	"github.com/bawasa/bawasa-backend/api/validators"
	"github.com/bawasa/bawasa-backend/internal/consumers"
	"github.com/bawasa/bawasa-backend/pkg/enums"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
	"github.com/bawasa/bawasa-backend/pkg/logger"
	"github.com/bawasa/bawasa-backend/pkg/pagination"
)

type createConsumerRequest struct {
	AccountNumber string     `json:"accountNumber" validate:"required"`
	FirstName     string     `json:"firstName" validate:"required"`
	LastName      string     `json:"lastName" validate:"required"`
	Address       string     `json:"address" validate:"required"`
	Barangay      string     `json:"barangay,omitempty"`
	MeterSerial   string     `json:"meterSerial,omitempty"`
	ConnectedAt   *time.Time `json:"connectedAt,omitempty"`
}

type updateConsumerRequest struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Address     *string `json:"address,omitempty"`
	Barangay    *string `json:"barangay,omitempty"`
	MeterSerial *string `json:"meterSerial,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// CreateConsumer registers a new billed account.
func CreateConsumer(svc consumers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consumer service unavailable"))
			return
		}

		var req createConsumerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		consumer, err := svc.Create(r.Context(), consumers.CreateInput{
			AccountNumber: req.AccountNumber,
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			Address:       req.Address,
			Barangay:      req.Barangay,
			MeterSerial:   req.MeterSerial,
			ConnectedAt:   req.ConnectedAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, consumer)
	}
}

// GetConsumer loads one consumer by id.
func GetConsumer(svc consumers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consumer service unavailable"))
			return
		}

		consumer, err := svc.Get(r.Context(), chi.URLParam(r, "consumerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, consumer)
	}
}

// UpdateConsumer patches the mutable consumer fields.
func UpdateConsumer(svc consumers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consumer service unavailable"))
			return
		}

		var req updateConsumerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := consumers.UpdateInput{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Address:     req.Address,
			Barangay:    req.Barangay,
			MeterSerial: req.MeterSerial,
		}
		if req.Status != nil {
			status, err := enums.ParseConsumerStatus(*req.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "status must be one of active, disconnected, delinquent"))
				return
			}
			input.Status = &status
		}

		consumer, err := svc.Update(r.Context(), chi.URLParam(r, "consumerId"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, consumer)
	}
}

// ListConsumers pages through the consumer base.
func ListConsumers(svc consumers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consumer service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), consumers.ListParams{
			Status: r.URL.Query().Get("status"),
			Search: validators.SanitizeString(r.URL.Query().Get("search"), 120),
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

package consumers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/db"
	"github.com/bawasa/bawasa-backend/pkg/db/models"
	"github.com/bawasa/bawasa-backend/pkg/enums"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
	pkgpagination "github.com/bawasa/bawasa-backend/pkg/pagination"
)

type consumersRepository interface {
	Create(ctx context.Context, consumer *models.Consumer) (*models.Consumer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Consumer, error)
	Update(ctx context.Context, consumer *models.Consumer) error
	List(ctx context.Context, opts listQuery) ([]models.Consumer, error)
}

// CreateInput holds the fields for registering a new consumer account.
type CreateInput struct {
	AccountNumber string
	FirstName     string
	LastName      string
	Address       string
	Barangay      string
	MeterSerial   string
	ConnectedAt   *time.Time
}

// UpdateInput holds the mutable consumer fields; nil means leave unchanged.
type UpdateInput struct {
	FirstName   *string
	LastName    *string
	Address     *string
	Barangay    *string
	MeterSerial *string
	Status      *enums.ConsumerStatus
}

// ListParams selects a consumer page.
type ListParams struct {
	Status string
	Search string
	Limit  int
	Cursor string
}

// ListResult is one page of consumers.
type ListResult struct {
	Items      []models.Consumer `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// Service exposes consumer account management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Consumer, error)
	Get(ctx context.Context, rawID string) (*models.Consumer, error)
	Update(ctx context.Context, rawID string, input UpdateInput) (*models.Consumer, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo consumersRepository
}

// NewService builds a consumer service backed by the provided repository.
func NewService(repo consumersRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("consumers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Consumer, error) {
	accountNumber := strings.TrimSpace(input.AccountNumber)
	if accountNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account_number is required")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "last_name is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}

	consumer := &models.Consumer{
		AccountNumber: accountNumber,
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Address:       strings.TrimSpace(input.Address),
		Barangay:      strings.TrimSpace(input.Barangay),
		MeterSerial:   strings.TrimSpace(input.MeterSerial),
		Status:        enums.ConsumerStatusActive,
		ConnectedAt:   input.ConnectedAt,
	}

	created, err := s.repo.Create(ctx, consumer)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "account number already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "create consumer")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, rawID string) (*models.Consumer, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "consumer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "lookup consumer")
	}
	return row, nil
}

func (s *service) Update(ctx context.Context, rawID string, input UpdateInput) (*models.Consumer, error) {
	row, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name cannot be empty")
		}
		row.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		if strings.TrimSpace(*input.LastName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "last_name cannot be empty")
		}
		row.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Address != nil {
		row.Address = strings.TrimSpace(*input.Address)
	}
	if input.Barangay != nil {
		row.Barangay = strings.TrimSpace(*input.Barangay)
	}
	if input.MeterSerial != nil {
		row.MeterSerial = strings.TrimSpace(*input.MeterSerial)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid consumer status")
		}
		row.Status = *input.Status
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "update consumer")
	}
	return row, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{
		search: strings.TrimSpace(params.Search),
		limit:  pkgpagination.LimitWithBuffer(params.Limit),
	}
	if raw := strings.TrimSpace(params.Status); raw != "" {
		status, err := enums.ParseConsumerStatus(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		query.status = status
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list consumers")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	result := &ListResult{}
	if len(rows) > limit {
		result.NextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}
	result.Items = rows
	return result, nil
}

func parseID(raw string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "consumerId is required")
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "consumerId must be a UUID")
	}
	return id, nil
}

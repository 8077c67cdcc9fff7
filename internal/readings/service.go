package readings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/db/models"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
	pkgpagination "github.com/bawasa/bawasa-backend/pkg/pagination"
)

type consumersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Consumer, error)
}

type readingsRepository interface {
	Create(ctx context.Context, reading *models.MeterReading) (*models.MeterReading, error)
	LatestByConsumer(ctx context.Context, consumerID uuid.UUID) (*models.MeterReading, error)
	List(ctx context.Context, opts listQuery) ([]models.MeterReading, error)
}

// Service exposes routine meter reading submission and history listing.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.MeterReading, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// SubmitInput carries one routine field reading.
type SubmitInput struct {
	ConsumerID     string
	PresentReading float64
	Remarks        string
}

// ListParams selects a consumer's reading history page.
type ListParams struct {
	ConsumerID string
	Limit      int
	Cursor     string
}

// ListResult is one page of reading history.
type ListResult struct {
	Items      []models.MeterReading `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

type service struct {
	repo      readingsRepository
	consumers consumersRepository
}

// NewService builds a reading service backed by the provided repositories.
func NewService(repo readingsRepository, consumers consumersRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("readings repository required")
	}
	if consumers == nil {
		return nil, fmt.Errorf("consumers repository required")
	}
	return &service{repo: repo, consumers: consumers}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.MeterReading, error) {
	consumerID, err := parseConsumerID(input.ConsumerID)
	if err != nil {
		return nil, err
	}
	if input.PresentReading < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "presentReading must be >= 0")
	}

	if _, err := s.consumers.FindByID(ctx, consumerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "consumer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "lookup consumer")
	}

	previous, sameMeter, err := s.baseline(ctx, consumerID)
	if err != nil {
		return nil, err
	}
	if sameMeter && input.PresentReading < previous {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "presentReading cannot be below the previous reading on the same meter")
	}

	now := time.Now().UTC()
	reading := &models.MeterReading{
		ConsumerID:      consumerID,
		PreviousReading: previous,
		PresentReading:  input.PresentReading,
		ReadingAssigned: false,
		Remarks:         strings.TrimSpace(input.Remarks),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, reading)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "insert meter reading")
	}
	return created, nil
}

// baseline resolves the previous reading for a new submission. A meter change
// resets the lineage: the replacement meter starts counting from zero.
func (s *service) baseline(ctx context.Context, consumerID uuid.UUID) (float64, bool, error) {
	latest, err := s.repo.LatestByConsumer(ctx, consumerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load latest reading")
	}
	if latest.MeterChanged {
		return 0, false, nil
	}
	return latest.PresentReading, true, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	consumerID, err := parseConsumerID(params.ConsumerID)
	if err != nil {
		return nil, err
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		consumerID: consumerID,
		limit:      pkgpagination.LimitWithBuffer(params.Limit),
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list readings")
	}

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

func parseConsumerID(raw string) (uuid.UUID, error) {
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

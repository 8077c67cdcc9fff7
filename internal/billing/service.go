package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/db/models"
	"github.com/bawasa/bawasa-backend/pkg/enums"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
	pkgpagination "github.com/bawasa/bawasa-backend/pkg/pagination"
)

// ReadingSource is the slice of the readings repository billing needs.
type ReadingSource interface {
	OldestUnassigned(ctx context.Context, consumerID uuid.UUID) (*models.MeterReading, error)
	MarkAssigned(ctx context.Context, id uuid.UUID) error
}

// BillStore is the transactional surface of the bill repository.
type BillStore interface {
	Create(ctx context.Context, bill *models.Bill) (*models.Bill, error)
}

type billsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	List(ctx context.Context, opts listQuery) ([]models.Bill, error)
}

type consumerStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Consumer, error)
}

// TxRunner executes fn inside a single transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ListParams selects a bill page.
type ListParams struct {
	ConsumerID string
	Status     string
	Limit      int
	Cursor     string
}

// ListResult is one page of bills.
type ListResult struct {
	Items      []models.Bill `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// Service exposes bill generation and listing.
type Service interface {
	GenerateBill(ctx context.Context, rawConsumerID string) (*models.Bill, error)
	Get(ctx context.Context, rawID string) (*models.Bill, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	tx        TxRunner
	consumers consumerStore
	repo      billsRepository
	bills     func(tx *gorm.DB) BillStore
	readings  func(tx *gorm.DB) ReadingSource
	tariff    Tariff
	dueDays   int
	now       func() time.Time
}

// NewService builds the billing service. The factories bind tx-scoped stores
// so marking the reading assigned and inserting the bill share one tx.
func NewService(
	tx TxRunner,
	consumers consumerStore,
	repo billsRepository,
	billFactory func(tx *gorm.DB) BillStore,
	readingFactory func(tx *gorm.DB) ReadingSource,
	tariff Tariff,
	dueDays int,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if consumers == nil {
		return nil, fmt.Errorf("consumers repository required")
	}
	if repo == nil {
		return nil, fmt.Errorf("bills repository required")
	}
	if billFactory == nil || readingFactory == nil {
		return nil, fmt.Errorf("store factories required")
	}
	if dueDays <= 0 {
		return nil, fmt.Errorf("due days must be positive")
	}
	return &service{
		tx:        tx,
		consumers: consumers,
		repo:      repo,
		bills:     billFactory,
		readings:  readingFactory,
		tariff:    tariff,
		dueDays:   dueDays,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) GenerateBill(ctx context.Context, rawConsumerID string) (*models.Bill, error) {
	consumerID, err := parseUUID(rawConsumerID, "consumerId")
	if err != nil {
		return nil, err
	}

	if _, err := s.consumers.FindByID(ctx, consumerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "consumer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "lookup consumer")
	}

	var bill *models.Bill
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		readings := s.readings(tx)
		bills := s.bills(tx)

		reading, err := readings.OldestUnassigned(ctx, consumerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "no unbilled reading for consumer")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "load unbilled reading")
		}

		consumption := reading.Consumption()
		now := s.now()

		created, err := bills.Create(ctx, &models.Bill{
			ConsumerID: consumerID,
			ReadingID:  reading.ID,
			// monthly cycle ending at the reading date
			PeriodStart: reading.CreatedAt.AddDate(0, -1, 0),
			PeriodEnd:   reading.CreatedAt,
			Consumption: consumption,
			Amount:      s.tariff.AmountFor(consumption),
			Status:      enums.BillStatusUnpaid,
			DueDate:     now.AddDate(0, 0, s.dueDays),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "insert bill")
		}

		if err := readings.MarkAssigned(ctx, reading.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "mark reading assigned")
		}

		bill = created
		return nil
	})
	if txErr != nil {
		if typed := pkgerrors.As(txErr); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, txErr, "bill generation transaction")
	}
	return bill, nil
}

func (s *service) Get(ctx context.Context, rawID string) (*models.Bill, error) {
	id, err := parseUUID(rawID, "billId")
	if err != nil {
		return nil, err
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "lookup bill")
	}
	return row, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{limit: pkgpagination.LimitWithBuffer(params.Limit)}

	if raw := strings.TrimSpace(params.ConsumerID); raw != "" {
		consumerID, err := parseUUID(raw, "consumerId")
		if err != nil {
			return nil, err
		}
		query.consumerID = consumerID
	}
	if raw := strings.TrimSpace(params.Status); raw != "" {
		status, err := enums.ParseBillStatus(raw)
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list bills")
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

func parseUUID(raw, field string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a UUID")
	}
	return id, nil
}

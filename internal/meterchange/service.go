package meterchange

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
)

// ReadingStore is the slice of the readings repository the reconciler needs.
type ReadingStore interface {
	LatestByConsumer(ctx context.Context, consumerID uuid.UUID) (*models.MeterReading, error)
	Create(ctx context.Context, reading *models.MeterReading) (*models.MeterReading, error)
}

type consumerStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Consumer, error)
}

// TxRunner executes fn inside a single transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Input carries a meter replacement request.
type Input struct {
	ConsumerID          string
	NewStartingReading  *float64
	EffectiveDate       string
	Reason              string
	ReadingBeforeChange *float64
}

// Summary reports the reconciliation figures for the cashier receipt.
type Summary struct {
	FinalReading      float64 `json:"final_reading"`
	PreviousReading   float64 `json:"previous_reading"`
	ConsumptionToBill float64 `json:"consumption_to_bill"`
	NewMeterStartsAt  float64 `json:"new_meter_starts_at"`
	Note              string  `json:"note"`
}

// Result is the created closing reading plus the reconciliation summary.
type Result struct {
	Reading *models.MeterReading `json:"reading"`
	Summary Summary              `json:"summary"`
}

// Service reconciles a physical meter replacement: it closes out the old
// meter's lineage with one final reading and reports what the consumer owes.
type Service interface {
	ChangeMeter(ctx context.Context, input Input) (*Result, error)
}

type service struct {
	tx        TxRunner
	consumers consumerStore
	store     func(tx *gorm.DB) ReadingStore
}

// NewService builds the meter-change reconciler. storeFactory binds a reading
// store to the transaction handle so the lookup and the insert share one tx.
func NewService(tx TxRunner, consumers consumerStore, storeFactory func(tx *gorm.DB) ReadingStore) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if consumers == nil {
		return nil, fmt.Errorf("consumers repository required")
	}
	if storeFactory == nil {
		return nil, fmt.Errorf("reading store factory required")
	}
	return &service{tx: tx, consumers: consumers, store: storeFactory}, nil
}

func (s *service) ChangeMeter(ctx context.Context, input Input) (*Result, error) {
	consumerID, effectiveDate, err := validate(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.consumers.FindByID(ctx, consumerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "consumer not found")
		}
		return nil, storeError("lookup consumer", err)
	}

	var result *Result
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.store(tx)

		previous := 0.0
		latest, err := store.LatestByConsumer(ctx, consumerID)
		switch {
		case err == nil:
			previous = latest.PresentReading
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first meter on record, lineage starts at zero
		default:
			return storeError("load latest reading", err)
		}

		final := previous
		if input.ReadingBeforeChange != nil {
			final = *input.ReadingBeforeChange
		}

		consumption := final - previous
		if consumption < 0 {
			consumption = 0
		}

		reason := strings.TrimSpace(input.Reason)
		remarks := fmt.Sprintf("%s | old meter closed at %.2f (previous %.2f) %s",
			reason, final, previous, models.MeterChangeMarker)

		reading := &models.MeterReading{
			ConsumerID:      consumerID,
			PreviousReading: previous,
			PresentReading:  final,
			ReadingAssigned: true,
			MeterChanged:    true,
			Remarks:         remarks,
			CreatedAt:       effectiveDate,
			UpdatedAt:       effectiveDate,
		}

		created, err := store.Create(ctx, reading)
		if err != nil {
			return storeError("insert meter reading", err)
		}

		result = &Result{
			Reading: created,
			Summary: Summary{
				FinalReading:      final,
				PreviousReading:   previous,
				ConsumptionToBill: consumption,
				NewMeterStartsAt:  0,
				Note: fmt.Sprintf("Old meter closed at %.2f; %.2f billable before the change. Next reading starts from 0.",
					final, consumption),
			},
		}
		return nil
	})
	if txErr != nil {
		if typed := pkgerrors.As(txErr); typed != nil {
			return nil, typed
		}
		return nil, storeError("meter change transaction", txErr)
	}
	return result, nil
}

func validate(input Input) (uuid.UUID, time.Time, error) {
	trimmedID := strings.TrimSpace(input.ConsumerID)
	if trimmedID == "" {
		return uuid.Nil, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "consumerId is required")
	}
	consumerID, err := uuid.Parse(trimmedID)
	if err != nil {
		return uuid.Nil, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "consumerId must be a UUID")
	}

	if input.NewStartingReading == nil {
		return uuid.Nil, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "newStartingReading is required")
	}
	if *input.NewStartingReading < 0 {
		return uuid.Nil, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "newStartingReading must be >= 0")
	}

	effectiveDate, err := parseEffectiveDate(input.EffectiveDate)
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}

	if strings.TrimSpace(input.Reason) == "" {
		return uuid.Nil, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}

	return consumerID, effectiveDate, nil
}

func parseEffectiveDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "effectiveDate is required")
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", trimmed); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "effectiveDate must be RFC3339 or YYYY-MM-DD")
}

func storeError(op string, err error) *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeStore, err, fmt.Sprintf("%s: %v", op, err))
}

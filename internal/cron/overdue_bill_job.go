package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/bawasa/bawasa-backend/pkg/logger"
)

type overdueBillMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	ConsumerIDsWithOverdue(ctx context.Context) ([]uuid.UUID, error)
}

type delinquencyMarker interface {
	MarkDelinquent(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// OverdueBillJobParams configure the nightly billing sweep.
type OverdueBillJobParams struct {
	Logger    *logger.Logger
	Bills     overdueBillMarker
	Consumers delinquencyMarker
}

// NewOverdueBillJob builds the job that flips past-due bills to overdue and
// flags the affected consumers as delinquent.
func NewOverdueBillJob(params OverdueBillJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Bills == nil {
		return nil, fmt.Errorf("bills repository required")
	}
	if params.Consumers == nil {
		return nil, fmt.Errorf("consumers repository required")
	}
	return &overdueBillJob{
		logg:      params.Logger,
		bills:     params.Bills,
		consumers: params.Consumers,
		now:       time.Now,
	}, nil
}

type overdueBillJob struct {
	logg      *logger.Logger
	bills     overdueBillMarker
	consumers delinquencyMarker
	now       func() time.Time
}

func (j *overdueBillJob) Name() string { return "overdue-bills" }

func (j *overdueBillJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.markOverdue(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.flagDelinquents(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *overdueBillJob) markOverdue(ctx context.Context) error {
	count, err := j.bills.MarkOverdue(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("mark overdue bills: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "overdue sweep complete")
	return nil
}

func (j *overdueBillJob) flagDelinquents(ctx context.Context) error {
	ids, err := j.bills.ConsumerIDsWithOverdue(ctx)
	if err != nil {
		return fmt.Errorf("query overdue consumers: %w", err)
	}
	if len(ids) == 0 {
		j.logg.Info(ctx, "no delinquent consumers this cycle")
		return nil
	}
	count, err := j.consumers.MarkDelinquent(ctx, ids)
	if err != nil {
		return fmt.Errorf("flag delinquent consumers: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "delinquency sweep complete")
	return nil
}

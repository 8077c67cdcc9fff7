package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bawasa/bawasa-backend/internal/billing"
	"github.com/bawasa/bawasa-backend/pkg/enums"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
)

type consumerCounter interface {
	CountByStatus(ctx context.Context) (map[enums.ConsumerStatus]int64, error)
}

type billAggregator interface {
	StatusTotals(ctx context.Context) (map[enums.BillStatus]billing.StatusTotal, error)
}

type collectionSummer interface {
	CollectedBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

// Summary is the admin landing-page aggregate.
type Summary struct {
	Consumers   ConsumerCounts  `json:"consumers"`
	Bills       BillTotals      `json:"bills"`
	Collections CollectionTotal `json:"collections"`
}

// ConsumerCounts breaks the consumer base down by status.
type ConsumerCounts struct {
	Active       int64 `json:"active"`
	Disconnected int64 `json:"disconnected"`
	Delinquent   int64 `json:"delinquent"`
	Total        int64 `json:"total"`
}

// BillTotals carries per-status bill counts and outstanding amounts.
type BillTotals struct {
	Unpaid  billing.StatusTotal `json:"unpaid"`
	Partial billing.StatusTotal `json:"partial"`
	Paid    billing.StatusTotal `json:"paid"`
	Overdue billing.StatusTotal `json:"overdue"`

	Outstanding decimal.Decimal `json:"outstanding"`
}

// CollectionTotal is the cash collected during the current calendar month.
type CollectionTotal struct {
	MonthStart time.Time       `json:"month_start"`
	Amount     decimal.Decimal `json:"amount"`
}

// Service produces the admin dashboard summary.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	consumers consumerCounter
	bills     billAggregator
	payments  collectionSummer
	now       func() time.Time
}

// NewService builds the dashboard service.
func NewService(consumers consumerCounter, bills billAggregator, payments collectionSummer) (Service, error) {
	if consumers == nil || bills == nil || payments == nil {
		return nil, fmt.Errorf("all repositories required")
	}
	return &service{
		consumers: consumers,
		bills:     bills,
		payments:  payments,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	counts, err := s.consumers.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "count consumers")
	}

	totals, err := s.bills.StatusTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "aggregate bills")
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	collected, err := s.payments.CollectedBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "sum collections")
	}

	active := counts[enums.ConsumerStatusActive]
	disconnected := counts[enums.ConsumerStatusDisconnected]
	delinquent := counts[enums.ConsumerStatusDelinquent]

	bills := BillTotals{
		Unpaid:  totals[enums.BillStatusUnpaid],
		Partial: totals[enums.BillStatusPartial],
		Paid:    totals[enums.BillStatusPaid],
		Overdue: totals[enums.BillStatusOverdue],
	}
	bills.Outstanding = bills.Unpaid.Amount.
		Add(bills.Partial.Amount).
		Add(bills.Overdue.Amount)

	return &Summary{
		Consumers: ConsumerCounts{
			Active:       active,
			Disconnected: disconnected,
			Delinquent:   delinquent,
			Total:        active + disconnected + delinquent,
		},
		Bills: bills,
		Collections: CollectionTotal{
			MonthStart: monthStart,
			Amount:     collected,
		},
	}, nil
}

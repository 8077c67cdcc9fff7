package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bawasa/bawasa-backend/pkg/logger"
)

type fakeBillMarker struct {
	marked     int64
	markErr    error
	overdueIDs []uuid.UUID
	queryErr   error
	markedAt   time.Time
}

func (f *fakeBillMarker) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	f.markedAt = now
	return f.marked, f.markErr
}

func (f *fakeBillMarker) ConsumerIDsWithOverdue(_ context.Context) ([]uuid.UUID, error) {
	return f.overdueIDs, f.queryErr
}

type fakeDelinquencyMarker struct {
	flagged []uuid.UUID
	err     error
}

func (f *fakeDelinquencyMarker) MarkDelinquent(_ context.Context, ids []uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.flagged = append(f.flagged, ids...)
	return int64(len(ids)), nil
}

func newOverdueJob(t *testing.T, bills *fakeBillMarker, consumers *fakeDelinquencyMarker) *overdueBillJob {
	t.Helper()
	jobIface, err := NewOverdueBillJob(OverdueBillJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Bills:     bills,
		Consumers: consumers,
	})
	if err != nil {
		t.Fatalf("NewOverdueBillJob: %v", err)
	}
	job, ok := jobIface.(*overdueBillJob)
	if !ok {
		t.Fatalf("expected overdueBillJob, got %T", jobIface)
	}
	return job
}

func TestOverdueBillJob_flagsDelinquents(t *testing.T) {
	now := time.Date(2026, 3, 18, 2, 0, 0, 0, time.UTC)
	late := []uuid.UUID{uuid.New(), uuid.New()}
	bills := &fakeBillMarker{marked: 4, overdueIDs: late}
	consumers := &fakeDelinquencyMarker{}
	job := newOverdueJob(t, bills, consumers)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bills.markedAt.Equal(now) {
		t.Fatalf("expected sweep at %s, got %s", now, bills.markedAt)
	}
	if len(consumers.flagged) != 2 {
		t.Fatalf("expected 2 flagged consumers, got %d", len(consumers.flagged))
	}
}

func TestOverdueBillJob_skipsFlaggingWhenNoneOverdue(t *testing.T) {
	bills := &fakeBillMarker{marked: 0}
	consumers := &fakeDelinquencyMarker{}
	job := newOverdueJob(t, bills, consumers)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(consumers.flagged) != 0 {
		t.Fatalf("expected no flags, got %d", len(consumers.flagged))
	}
}

func TestOverdueBillJob_collectsBothPhaseErrors(t *testing.T) {
	bills := &fakeBillMarker{
		markErr:  errors.New("sweep failed"),
		queryErr: errors.New("query failed"),
	}
	job := newOverdueJob(t, bills, &fakeDelinquencyMarker{})

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "sweep failed") || !strings.Contains(msg, "query failed") {
		t.Fatalf("expected both phase errors, got %q", msg)
	}
}

package meterchange

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/db/models"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
)

type fakeTxRunner struct {
	rolledBack bool
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := fn(nil)
	if err != nil {
		f.rolledBack = true
	}
	return err
}

type fakeConsumerStore struct {
	known map[uuid.UUID]*models.Consumer
	err   error
}

func (f *fakeConsumerStore) FindByID(_ context.Context, id uuid.UUID) (*models.Consumer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.known[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeReadingStore struct {
	latest    *models.MeterReading
	latestErr error
	createErr error
	created   []*models.MeterReading
}

func (f *fakeReadingStore) LatestByConsumer(_ context.Context, _ uuid.UUID) (*models.MeterReading, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	if f.latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.latest, nil
}

func (f *fakeReadingStore) Create(_ context.Context, reading *models.MeterReading) (*models.MeterReading, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	reading.ID = uuid.New()
	f.created = append(f.created, reading)
	return reading, nil
}

func newTestService(t *testing.T, consumerID uuid.UUID, store *fakeReadingStore) (Service, *fakeTxRunner) {
	t.Helper()
	tx := &fakeTxRunner{}
	consumers := &fakeConsumerStore{known: map[uuid.UUID]*models.Consumer{
		consumerID: {ID: consumerID, AccountNumber: "ACC-001"},
	}}
	svc, err := NewService(tx, consumers, func(_ *gorm.DB) ReadingStore { return store })
	require.NoError(t, err)
	return svc, tx
}

func floatPtr(v float64) *float64 { return &v }

func validInput(consumerID uuid.UUID) Input {
	return Input{
		ConsumerID:         consumerID.String(),
		NewStartingReading: floatPtr(0),
		EffectiveDate:      "2026-03-15",
		Reason:             "meter stuck",
	}
}

func TestChangeMeterNoHistoryStartsFromZero(t *testing.T) {
	consumerID := uuid.New()
	store := &fakeReadingStore{}
	svc, _ := newTestService(t, consumerID, store)

	result, err := svc.ChangeMeter(context.Background(), validInput(consumerID))
	require.NoError(t, err)

	require.Equal(t, 0.0, result.Summary.PreviousReading)
	require.Equal(t, 0.0, result.Summary.FinalReading)
	require.Equal(t, 0.0, result.Summary.ConsumptionToBill)
	require.Equal(t, 0.0, result.Summary.NewMeterStartsAt)
	require.Len(t, store.created, 1)
}

func TestChangeMeterNoOverrideBillsNothing(t *testing.T) {
	consumerID := uuid.New()
	store := &fakeReadingStore{latest: &models.MeterReading{
		PreviousReading: 10,
		PresentReading:  42,
	}}
	svc, _ := newTestService(t, consumerID, store)

	result, err := svc.ChangeMeter(context.Background(), validInput(consumerID))
	require.NoError(t, err)

	require.Equal(t, 42.0, result.Summary.PreviousReading)
	require.Equal(t, 42.0, result.Summary.FinalReading)
	require.Equal(t, 0.0, result.Summary.ConsumptionToBill)
	require.Equal(t, 42.0, result.Reading.PresentReading)
	require.Equal(t, 42.0, result.Reading.PreviousReading)
}

func TestChangeMeterOverrideBillsDelta(t *testing.T) {
	consumerID := uuid.New()
	store := &fakeReadingStore{latest: &models.MeterReading{PresentReading: 42}}
	svc, _ := newTestService(t, consumerID, store)

	input := validInput(consumerID)
	input.ReadingBeforeChange = floatPtr(50)

	result, err := svc.ChangeMeter(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, 42.0, result.Summary.PreviousReading)
	require.Equal(t, 50.0, result.Summary.FinalReading)
	require.Equal(t, 8.0, result.Summary.ConsumptionToBill)
	require.Equal(t, 50.0, result.Reading.PresentReading)
}

func TestChangeMeterNoHistoryWithOverride(t *testing.T) {
	consumerID := uuid.New()
	store := &fakeReadingStore{}
	svc, _ := newTestService(t, consumerID, store)

	input := validInput(consumerID)
	input.ReadingBeforeChange = floatPtr(15)

	result, err := svc.ChangeMeter(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, 0.0, result.Summary.PreviousReading)
	require.Equal(t, 15.0, result.Summary.FinalReading)
	require.Equal(t, 15.0, result.Summary.ConsumptionToBill)
}

func TestChangeMeterConsumptionNeverNegative(t *testing.T) {
	consumerID := uuid.New()
	store := &fakeReadingStore{latest: &models.MeterReading{PresentReading: 42}}
	svc, _ := newTestService(t, consumerID, store)

	input := validInput(consumerID)
	input.ReadingBeforeChange = floatPtr(30) // below the last recorded reading

	result, err := svc.ChangeMeter(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, 0.0, result.Summary.ConsumptionToBill)
	require.Equal(t, 30.0, result.Summary.FinalReading)
}

func TestChangeMeterInsertedRowShape(t *testing.T) {
	consumerID := uuid.New()
	store := &fakeReadingStore{latest: &models.MeterReading{PresentReading: 42}}
	svc, _ := newTestService(t, consumerID, store)

	input := validInput(consumerID)
	input.EffectiveDate = "2026-03-15T08:30:00Z"
	input.Reason = "corroded register"

	result, err := svc.ChangeMeter(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	row := store.created[0]
	require.Equal(t, row, result.Reading)
	require.Equal(t, 42.0, result.Summary.FinalReading)
	require.True(t, row.ReadingAssigned)
	require.True(t, row.MeterChanged)
	require.Contains(t, row.Remarks, models.MeterChangeMarker)
	require.Contains(t, row.Remarks, "corroded register")

	wantDate := time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)
	require.Equal(t, wantDate, row.CreatedAt)
	require.Equal(t, wantDate, row.UpdatedAt)
}

func TestChangeMeterValidationShortCircuits(t *testing.T) {
	consumerID := uuid.New()

	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing consumer id", func(in *Input) { in.ConsumerID = "" }},
		{"malformed consumer id", func(in *Input) { in.ConsumerID = "not-a-uuid" }},
		{"missing new starting reading", func(in *Input) { in.NewStartingReading = nil }},
		{"negative new starting reading", func(in *Input) { in.NewStartingReading = floatPtr(-1) }},
		{"missing effective date", func(in *Input) { in.EffectiveDate = "" }},
		{"unparseable effective date", func(in *Input) { in.EffectiveDate = "15/03/2026" }},
		{"missing reason", func(in *Input) { in.Reason = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeReadingStore{}
			svc, _ := newTestService(t, consumerID, store)

			input := validInput(consumerID)
			tt.mutate(&input)

			_, err := svc.ChangeMeter(context.Background(), input)
			require.Error(t, err)

			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			require.Equal(t, pkgerrors.CodeValidation, typed.Code())
			require.Empty(t, store.created, "validation failures must not write rows")
		})
	}
}

func TestChangeMeterUnknownConsumer(t *testing.T) {
	store := &fakeReadingStore{}
	svc, _ := newTestService(t, uuid.New(), store)

	_, err := svc.ChangeMeter(context.Background(), validInput(uuid.New()))
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	require.Empty(t, store.created)
}

func TestChangeMeterInsertFailureSurfacesStoreError(t *testing.T) {
	consumerID := uuid.New()
	store := &fakeReadingStore{
		latest:    &models.MeterReading{PresentReading: 42},
		createErr: errors.New("connection reset"),
	}
	svc, tx := newTestService(t, consumerID, store)

	result, err := svc.ChangeMeter(context.Background(), validInput(consumerID))
	require.Error(t, err)
	require.Nil(t, result, "no summary on failure")
	require.True(t, tx.rolledBack)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStore, typed.Code())
	require.True(t, strings.Contains(typed.Message(), "connection reset"), "store message must pass through")
	require.Empty(t, store.created)
}

func TestChangeMeterLatestLookupFailure(t *testing.T) {
	consumerID := uuid.New()
	store := &fakeReadingStore{latestErr: errors.New("disk I/O error")}
	svc, _ := newTestService(t, consumerID, store)

	_, err := svc.ChangeMeter(context.Background(), validInput(consumerID))
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStore, typed.Code())
	require.Empty(t, store.created)
}

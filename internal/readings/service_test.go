package readings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/db/models"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
)

type fakeReadingsRepo struct {
	latest  *models.MeterReading
	rows    []models.MeterReading
	created []*models.MeterReading
}

func (f *fakeReadingsRepo) Create(_ context.Context, reading *models.MeterReading) (*models.MeterReading, error) {
	reading.ID = uuid.New()
	f.created = append(f.created, reading)
	return reading, nil
}

func (f *fakeReadingsRepo) LatestByConsumer(_ context.Context, _ uuid.UUID) (*models.MeterReading, error) {
	if f.latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.latest, nil
}

func (f *fakeReadingsRepo) List(_ context.Context, opts listQuery) ([]models.MeterReading, error) {
	if opts.limit < len(f.rows) {
		return f.rows[:opts.limit], nil
	}
	return f.rows, nil
}

type fakeConsumers struct {
	known map[uuid.UUID]bool
}

func (f *fakeConsumers) FindByID(_ context.Context, id uuid.UUID) (*models.Consumer, error) {
	if f.known[id] {
		return &models.Consumer{ID: id}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newReadingsService(t *testing.T, consumerID uuid.UUID, repo *fakeReadingsRepo) Service {
	t.Helper()
	svc, err := NewService(repo, &fakeConsumers{known: map[uuid.UUID]bool{consumerID: true}})
	require.NoError(t, err)
	return svc
}

func TestSubmitFirstReadingBaselineZero(t *testing.T) {
	consumerID := uuid.New()
	repo := &fakeReadingsRepo{}
	svc := newReadingsService(t, consumerID, repo)

	created, err := svc.Submit(context.Background(), SubmitInput{
		ConsumerID:     consumerID.String(),
		PresentReading: 12,
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, created.PreviousReading)
	require.Equal(t, 12.0, created.PresentReading)
	require.False(t, created.ReadingAssigned)
}

func TestSubmitUsesLatestAsBaseline(t *testing.T) {
	consumerID := uuid.New()
	repo := &fakeReadingsRepo{latest: &models.MeterReading{PresentReading: 42}}
	svc := newReadingsService(t, consumerID, repo)

	created, err := svc.Submit(context.Background(), SubmitInput{
		ConsumerID:     consumerID.String(),
		PresentReading: 50,
	})
	require.NoError(t, err)
	require.Equal(t, 42.0, created.PreviousReading)
	require.Equal(t, 8.0, created.Consumption())
}

func TestSubmitAfterMeterChangeStartsFromZero(t *testing.T) {
	consumerID := uuid.New()
	repo := &fakeReadingsRepo{latest: &models.MeterReading{
		PresentReading: 42,
		MeterChanged:   true,
		Remarks:        "stuck register " + models.MeterChangeMarker,
	}}
	svc := newReadingsService(t, consumerID, repo)

	created, err := svc.Submit(context.Background(), SubmitInput{
		ConsumerID:     consumerID.String(),
		PresentReading: 5,
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, created.PreviousReading, "new meter lineage starts at zero")
	require.Equal(t, 5.0, created.PresentReading)
}

func TestSubmitRejectsRollbackOnSameMeter(t *testing.T) {
	consumerID := uuid.New()
	repo := &fakeReadingsRepo{latest: &models.MeterReading{PresentReading: 42}}
	svc := newReadingsService(t, consumerID, repo)

	_, err := svc.Submit(context.Background(), SubmitInput{
		ConsumerID:     consumerID.String(),
		PresentReading: 30,
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Empty(t, repo.created)
}

func TestSubmitRejectsUnknownConsumer(t *testing.T) {
	repo := &fakeReadingsRepo{}
	svc := newReadingsService(t, uuid.New(), repo)

	_, err := svc.Submit(context.Background(), SubmitInput{
		ConsumerID:     uuid.NewString(),
		PresentReading: 1,
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestSubmitRejectsNegativeReading(t *testing.T) {
	consumerID := uuid.New()
	repo := &fakeReadingsRepo{}
	svc := newReadingsService(t, consumerID, repo)

	_, err := svc.Submit(context.Background(), SubmitInput{
		ConsumerID:     consumerID.String(),
		PresentReading: -3,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestListPaginatesWithCursor(t *testing.T) {
	consumerID := uuid.New()
	rows := make([]models.MeterReading, 3)
	for i := range rows {
		rows[i] = models.MeterReading{ID: uuid.New(), ConsumerID: consumerID}
	}
	repo := &fakeReadingsRepo{rows: rows}
	svc := newReadingsService(t, consumerID, repo)

	result, err := svc.List(context.Background(), ListParams{ConsumerID: consumerID.String(), Limit: 2})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	require.NotEmpty(t, result.NextCursor)
}

func TestListRejectsBadCursor(t *testing.T) {
	consumerID := uuid.New()
	svc := newReadingsService(t, consumerID, &fakeReadingsRepo{})

	_, err := svc.List(context.Background(), ListParams{ConsumerID: consumerID.String(), Cursor: "%%%"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

package readings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/db/models"
	"github.com/bawasa/bawasa-backend/pkg/pagination"
)

func setupReadingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:readings_repo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS meter_readings (
  id TEXT PRIMARY KEY,
  consumer_id TEXT NOT NULL,
  previous_reading REAL NOT NULL,
  present_reading REAL NOT NULL,
  reading_assigned INTEGER NOT NULL DEFAULT 0,
  meter_changed INTEGER NOT NULL DEFAULT 0,
  remarks TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func insertReading(t *testing.T, repo *Repository, consumerID uuid.UUID, prev, present float64, assigned bool, at time.Time) *models.MeterReading {
	t.Helper()

	row, err := repo.Create(context.Background(), &models.MeterReading{
		ConsumerID:      consumerID,
		PreviousReading: prev,
		PresentReading:  present,
		ReadingAssigned: assigned,
		CreatedAt:       at,
		UpdatedAt:       at,
	})
	require.NoError(t, err)
	return row
}

func TestRepositoryLatestByConsumer(t *testing.T) {
	repo := NewRepository(setupReadingsTestDB(t))
	consumerID := uuid.New()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	insertReading(t, repo, consumerID, 0, 12, true, base)
	latest := insertReading(t, repo, consumerID, 12, 27, false, base.AddDate(0, 1, 0))
	insertReading(t, repo, uuid.New(), 0, 99, false, base.AddDate(0, 2, 0))

	got, err := repo.LatestByConsumer(context.Background(), consumerID)
	require.NoError(t, err)
	require.Equal(t, latest.ID, got.ID)
	require.Equal(t, 27.0, got.PresentReading)
}

func TestRepositoryLatestByConsumerNoHistory(t *testing.T) {
	repo := NewRepository(setupReadingsTestDB(t))

	_, err := repo.LatestByConsumer(context.Background(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryOldestUnassignedAndMarkAssigned(t *testing.T) {
	repo := NewRepository(setupReadingsTestDB(t))
	consumerID := uuid.New()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	first := insertReading(t, repo, consumerID, 0, 10, false, base)
	second := insertReading(t, repo, consumerID, 10, 25, false, base.AddDate(0, 1, 0))

	got, err := repo.OldestUnassigned(context.Background(), consumerID)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)

	require.NoError(t, repo.MarkAssigned(context.Background(), first.ID))

	got, err = repo.OldestUnassigned(context.Background(), consumerID)
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)
}

func TestRepositoryMarkAssignedUnknownID(t *testing.T) {
	repo := NewRepository(setupReadingsTestDB(t))

	err := repo.MarkAssigned(context.Background(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListPaginates(t *testing.T) {
	repo := NewRepository(setupReadingsTestDB(t))
	consumerID := uuid.New()
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		insertReading(t, repo, consumerID, float64(i*10), float64((i+1)*10), true, base.AddDate(0, i, 0))
	}

	page, err := repo.List(context.Background(), listQuery{consumerID: consumerID, limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	cursor := &pagination.Cursor{CreatedAt: page[1].CreatedAt, ID: page[1].ID}
	rest, err := repo.List(context.Background(), listQuery{consumerID: consumerID, limit: 2, cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.WithinDuration(t, base, rest[0].CreatedAt, time.Second)
}

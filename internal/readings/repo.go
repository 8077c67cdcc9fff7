package readings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/db/models"
	"github.com/bawasa/bawasa-backend/pkg/pagination"
)

type listQuery struct {
	consumerID uuid.UUID
	limit      int
	cursor     *pagination.Cursor
}

// Repository exposes meter reading persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reading repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new reading row. IDs are assigned client-side so the
// repository behaves the same against postgres and the sqlite test driver.
func (r *Repository) Create(ctx context.Context, reading *models.MeterReading) (*models.MeterReading, error) {
	if reading.ID == uuid.Nil {
		reading.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(reading).Error; err != nil {
		return nil, err
	}
	return reading, nil
}

// LatestByConsumer returns the most recent reading for the consumer.
// gorm.ErrRecordNotFound is returned when the consumer has no history.
func (r *Repository) LatestByConsumer(ctx context.Context, consumerID uuid.UUID) (*models.MeterReading, error) {
	var row models.MeterReading
	err := r.db.WithContext(ctx).
		Where("consumer_id = ?", consumerID).
		Order("created_at DESC").
		Order("id DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// OldestUnassigned returns the oldest reading that has not been billed yet.
func (r *Repository) OldestUnassigned(ctx context.Context, consumerID uuid.UUID) (*models.MeterReading, error) {
	var row models.MeterReading
	err := r.db.WithContext(ctx).
		Where("consumer_id = ? AND reading_assigned = ?", consumerID, false).
		Order("created_at ASC").
		Order("id ASC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkAssigned flips the billing flag on a reading.
func (r *Repository) MarkAssigned(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.MeterReading{}).
		Where("id = ?", id).
		Update("reading_assigned", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns consumer-scoped readings using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.MeterReading, error) {
	query := r.db.WithContext(ctx).Model(&models.MeterReading{}).Where("consumer_id = ?", opts.consumerID)

	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.MeterReading
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

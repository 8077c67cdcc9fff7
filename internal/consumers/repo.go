package consumers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/db/models"
	"github.com/bawasa/bawasa-backend/pkg/enums"
	"github.com/bawasa/bawasa-backend/pkg/pagination"
)

type listQuery struct {
	status enums.ConsumerStatus
	search string
	limit  int
	cursor *pagination.Cursor
}

// Repository exposes consumer persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a consumer repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new consumer row.
func (r *Repository) Create(ctx context.Context, consumer *models.Consumer) (*models.Consumer, error) {
	if consumer.ID == uuid.Nil {
		consumer.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(consumer).Error; err != nil {
		return nil, err
	}
	return consumer, nil
}

// FindByID loads a consumer by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Consumer, error) {
	var row models.Consumer
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByAccountNumber loads a consumer by their account number.
func (r *Repository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Consumer, error) {
	var row models.Consumer
	if err := r.db.WithContext(ctx).First(&row, "account_number = ?", accountNumber).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Update persists the full consumer row.
func (r *Repository) Update(ctx context.Context, consumer *models.Consumer) error {
	return r.db.WithContext(ctx).Save(consumer).Error
}

// MarkDelinquent flips the given active consumers to delinquent. Disconnected
// consumers are left alone. Returns how many rows changed.
func (r *Repository) MarkDelinquent(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Consumer{}).
		Where("id IN ? AND status = ?", ids, enums.ConsumerStatusActive).
		Update("status", enums.ConsumerStatusDelinquent)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountByStatus returns how many consumers are in each status.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.ConsumerStatus]int64, error) {
	type bucket struct {
		Status enums.ConsumerStatus
		Total  int64
	}
	var buckets []bucket
	err := r.db.WithContext(ctx).
		Model(&models.Consumer{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.ConsumerStatus]int64, len(buckets))
	for _, b := range buckets {
		counts[b.Status] = b.Total
	}
	return counts, nil
}

// List returns consumers filtered by status and search text using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Consumer, error) {
	query := r.db.WithContext(ctx).Model(&models.Consumer{})

	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}
	if opts.search != "" {
		needle := "%" + opts.search + "%"
		query = query.Where(
			"account_number LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			needle, needle, needle,
		)
	}

	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Consumer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

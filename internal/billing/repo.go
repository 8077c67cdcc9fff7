package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/db/models"
	"github.com/bawasa/bawasa-backend/pkg/enums"
	"github.com/bawasa/bawasa-backend/pkg/pagination"
)

type listQuery struct {
	consumerID uuid.UUID
	status     enums.BillStatus
	limit      int
	cursor     *pagination.Cursor
}

// Repository exposes bill persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a bill repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new bill row.
func (r *Repository) Create(ctx context.Context, bill *models.Bill) (*models.Bill, error) {
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(bill).Error; err != nil {
		return nil, err
	}
	return bill, nil
}

// FindByID loads a bill by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	var row models.Bill
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateStatus transitions a bill to the supplied status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BillStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Bill{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns bills using cursor pagination, optionally filtered by consumer and status.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Bill, error) {
	query := r.db.WithContext(ctx).Model(&models.Bill{})

	if opts.consumerID != uuid.Nil {
		query = query.Where("consumer_id = ?", opts.consumerID)
	}
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Bill
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkOverdue flips unpaid and partial bills past their due date to overdue.
// Returns how many rows were transitioned.
func (r *Repository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Bill{}).
		Where("due_date < ? AND status IN ?", now, []enums.BillStatus{enums.BillStatusUnpaid, enums.BillStatusPartial}).
		Update("status", enums.BillStatusOverdue)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ConsumerIDsWithOverdue returns the distinct consumers that currently hold
// at least one overdue bill.
func (r *Repository) ConsumerIDsWithOverdue(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Bill{}).
		Where("status = ?", enums.BillStatusOverdue).
		Distinct("consumer_id").
		Pluck("consumer_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// StatusTotals aggregates bill counts and amounts per status for the dashboard.
func (r *Repository) StatusTotals(ctx context.Context) (map[enums.BillStatus]StatusTotal, error) {
	type bucket struct {
		Status enums.BillStatus
		Total  int64
		Amount decimal.Decimal
	}
	var buckets []bucket
	err := r.db.WithContext(ctx).
		Model(&models.Bill{}).
		Select("status, COUNT(*) AS total, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[enums.BillStatus]StatusTotal, len(buckets))
	for _, b := range buckets {
		totals[b.Status] = StatusTotal{Count: b.Total, Amount: b.Amount}
	}
	return totals, nil
}

// StatusTotal is one dashboard aggregate bucket.
type StatusTotal struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

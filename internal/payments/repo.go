package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/db/models"
	"github.com/bawasa/bawasa-backend/pkg/pagination"
)

type listQuery struct {
	billID    uuid.UUID
	cashierID uuid.UUID
	from      time.Time
	to        time.Time
	limit     int
	cursor    *pagination.Cursor
}

// Repository exposes payment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a payment repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new payment row. The or_number unique index rejects
// receipt reuse at the database level.
func (r *Repository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// FindByID loads a payment by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var row models.Payment
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// TotalPaid sums every collection recorded against a bill.
func (r *Repository) TotalPaid(ctx context.Context, billID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("bill_id = ?", billID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// List returns payments using cursor pagination, optionally filtered by
// bill, cashier, and collection window.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Payment, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{})

	if opts.billID != uuid.Nil {
		query = query.Where("bill_id = ?", opts.billID)
	}
	if opts.cashierID != uuid.Nil {
		query = query.Where("cashier_id = ?", opts.cashierID)
	}
	if !opts.from.IsZero() {
		query = query.Where("created_at >= ?", opts.from)
	}
	if !opts.to.IsZero() {
		query = query.Where("created_at < ?", opts.to)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Payment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CollectedBetween sums all collections inside [from, to). The dashboard
// uses it for the current-month total.
func (r *Repository) CollectedBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

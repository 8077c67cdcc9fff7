package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bawasa/bawasa-backend/pkg/enums"
)

// Bill charges a consumer for the consumption of exactly one meter reading.
type Bill struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ConsumerID  uuid.UUID        `gorm:"column:consumer_id;type:uuid;not null;index" json:"consumer_id"`
	ReadingID   uuid.UUID        `gorm:"column:reading_id;type:uuid;not null;unique" json:"reading_id"`
	PeriodStart time.Time        `gorm:"column:period_start;not null" json:"period_start"`
	PeriodEnd   time.Time        `gorm:"column:period_end;not null" json:"period_end"`
	Consumption float64          `gorm:"column:consumption;not null" json:"consumption"`
	Amount      decimal.Decimal  `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Status      enums.BillStatus `gorm:"column:status;type:bill_status;not null;default:'unpaid'" json:"status"`
	DueDate     time.Time        `gorm:"column:due_date;not null" json:"due_date"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

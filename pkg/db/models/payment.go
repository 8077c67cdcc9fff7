package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bawasa/bawasa-backend/pkg/enums"
)

// Payment is a cashier-recorded collection against a bill. ORNumber is the
// official receipt number and must be unique across the system.
type Payment struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BillID     uuid.UUID           `gorm:"column:bill_id;type:uuid;not null;index" json:"bill_id"`
	ConsumerID uuid.UUID           `gorm:"column:consumer_id;type:uuid;not null;index" json:"consumer_id"`
	CashierID  uuid.UUID           `gorm:"column:cashier_id;type:uuid;not null" json:"cashier_id"`
	Amount     decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Method     enums.PaymentMethod `gorm:"column:method;type:payment_method;not null;default:'cash'" json:"method"`
	ORNumber   string              `gorm:"column:or_number;not null;unique" json:"or_number"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

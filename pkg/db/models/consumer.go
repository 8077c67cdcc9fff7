package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bawasa/bawasa-backend/pkg/enums"
)

// Consumer is a billed account in the waterworks system. A consumer has
// exactly one current meter lineage at any time; meter replacements are
// recorded through the meter-change workflow, not by editing this row.
type Consumer struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountNumber string               `gorm:"column:account_number;not null;unique" json:"account_number"`
	FirstName     string               `gorm:"column:first_name;not null" json:"first_name"`
	LastName      string               `gorm:"column:last_name;not null" json:"last_name"`
	Address       string               `gorm:"column:address;not null" json:"address"`
	Barangay      string               `gorm:"column:barangay" json:"barangay,omitempty"`
	MeterSerial   string               `gorm:"column:meter_serial" json:"meter_serial,omitempty"`
	Status        enums.ConsumerStatus `gorm:"column:status;type:consumer_status;not null;default:'active'" json:"status"`
	ConnectedAt   *time.Time           `gorm:"column:connected_at" json:"connected_at,omitempty"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// MeterChangeMarker is the literal token embedded in the remarks of the
// closing reading written by a meter change. The reading-ingestion workflow
// keys off MeterChanged, but the token is kept for compatibility with records
// written before the structured flag existed.
const MeterChangeMarker = "[METER CHANGED - NEXT READING STARTS FROM 0]"

// MeterReading is one append-only row of the consumer's reading history.
// Rows are never deleted and never mutated after creation, except for the
// ReadingAssigned flip performed by the billing pass.
type MeterReading struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ConsumerID      uuid.UUID `gorm:"column:consumer_id;type:uuid;not null;index" json:"consumer_id"`
	PreviousReading float64   `gorm:"column:previous_reading;not null" json:"previous_reading"`
	PresentReading  float64   `gorm:"column:present_reading;not null" json:"present_reading"`
	ReadingAssigned bool      `gorm:"column:reading_assigned;not null;default:false" json:"reading_assigned"`
	MeterChanged    bool      `gorm:"column:meter_changed;not null;default:false" json:"meter_changed"`
	Remarks         string    `gorm:"column:remarks" json:"remarks,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// Consumption is the billable volume of this reading, floored at zero so
// inconsistent input data never produces a negative charge.
func (m MeterReading) Consumption() float64 {
	if m.PresentReading <= m.PreviousReading {
		return 0
	}
	return m.PresentReading - m.PreviousReading
}

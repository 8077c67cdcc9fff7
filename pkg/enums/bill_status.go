package enums

import "fmt"

// BillStatus follows a bill from issuance to settlement.
type BillStatus string

const (
	BillStatusUnpaid  BillStatus = "unpaid"
	BillStatusPartial BillStatus = "partial"
	BillStatusPaid    BillStatus = "paid"
	BillStatusOverdue BillStatus = "overdue"
)

var validBillStatuses = []BillStatus{
	BillStatusUnpaid,
	BillStatusPartial,
	BillStatusPaid,
	BillStatusOverdue,
}

// String implements fmt.Stringer.
func (b BillStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is known.
func (b BillStatus) IsValid() bool {
	for _, candidate := range validBillStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsSettleable reports whether a payment may still be applied.
func (b BillStatus) IsSettleable() bool {
	return b == BillStatusUnpaid || b == BillStatusPartial || b == BillStatusOverdue
}

// ParseBillStatus converts raw input into a BillStatus.
func ParseBillStatus(value string) (BillStatus, error) {
	for _, candidate := range validBillStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bill status %q", value)
}

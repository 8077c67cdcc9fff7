package enums

import "fmt"

// ConsumerStatus tracks the service state of a consumer connection.
type ConsumerStatus string

const (
	ConsumerStatusActive       ConsumerStatus = "active"
	ConsumerStatusDisconnected ConsumerStatus = "disconnected"
	ConsumerStatusDelinquent   ConsumerStatus = "delinquent"
)

var validConsumerStatuses = []ConsumerStatus{
	ConsumerStatusActive,
	ConsumerStatusDisconnected,
	ConsumerStatusDelinquent,
}

// String implements fmt.Stringer.
func (c ConsumerStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c ConsumerStatus) IsValid() bool {
	for _, candidate := range validConsumerStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConsumerStatus converts raw input into a ConsumerStatus.
func ParseConsumerStatus(value string) (ConsumerStatus, error) {
	for _, candidate := range validConsumerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid consumer status %q", value)
}

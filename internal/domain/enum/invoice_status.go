package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "pending"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
)

// InvoiceStatuses lists every status in display order
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusPending,
	InvoiceStatusPartiallyPaid,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
}

func (s InvoiceStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// ParseInvoiceStatus converts a wire value into an InvoiceStatus
func ParseInvoiceStatus(raw string) (InvoiceStatus, error) {
	s := InvoiceStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown invoice status %q", raw)
	}
	return s, nil
}

// UnmarshalJSON accepts a known status or the empty string, which leaves the
// choice of status to the caller.
func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseInvoiceStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusPending
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = InvoiceStatus(v)
	case []byte:
		*s = InvoiceStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into InvoiceStatus", value)
	}
	return nil
}

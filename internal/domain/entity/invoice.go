package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Invoice is a bill issued by a user to a client. The client fields are a
// snapshot taken when the invoice was created or last edited.
type Invoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoices_user_number,priority:1" json:"user_id"`
	InvoiceNumber string             `gorm:"size:50;not null;uniqueIndex:idx_invoices_user_number,priority:2" json:"invoice_number"`
	ClientID      *uuid.UUID         `gorm:"type:uuid;index" json:"client_id,omitempty"`
	ClientName    string             `gorm:"size:255;not null" json:"client_name"`
	ClientEmail   string             `gorm:"size:255;not null" json:"client_email"`
	ClientAddress string             `gorm:"type:text;not null" json:"client_address"`
	IssueDate     Date               `gorm:"type:date;not null;index" json:"issue_date"`
	DueDate       Date               `gorm:"type:date;not null;index" json:"due_date"`
	Subtotal      float64            `gorm:"not null;default:0" json:"subtotal"`
	Tax           float64            `gorm:"not null;default:0" json:"tax"`
	Total         float64            `gorm:"not null;default:0" json:"total"`
	AmountPaid    float64            `gorm:"not null;default:0" json:"amount_paid"`
	Balance       float64            `gorm:"not null;default:0" json:"balance"`
	Status        enum.InvoiceStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	Version       int64              `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	Items []LineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Version == 0 {
		i.Version = 1
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// Clone returns a deep copy so callers can mutate items without aliasing.
func (i Invoice) Clone() Invoice {
	out := i
	if i.Items != nil {
		out.Items = make([]LineItem, len(i.Items))
		copy(out.Items, i.Items)
	}
	if i.Notes != nil {
		notes := *i.Notes
		out.Notes = &notes
	}
	if i.ClientID != nil {
		clientID := *i.ClientID
		out.ClientID = &clientID
	}
	return out
}

// LineItem is a single billable row on an invoice. Amount is always derived.
type LineItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	Rate        float64   `gorm:"not null" json:"rate"`
	Amount      float64   `gorm:"not null" json:"amount"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// BeforeCreate generates a UUID before creating a new line item
func (li *LineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LineItem model
func (LineItem) TableName() string {
	return "invoice_items"
}

// InvoiceSequence holds the last invoice number handed out to an owner
type InvoiceSequence struct {
	UserID    uuid.UUID `gorm:"type:uuid;primary_key"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName returns the table name for the InvoiceSequence model
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice defaults applied when a user has never saved settings
const (
	DefaultInvoicePrefix = "INV"
	DefaultCurrency      = "KSH"
	DefaultPaymentTerms  = 30
	DefaultTaxRate       = 16
	DefaultInvoiceNotes  = "Thank you for your business!"
)

// BusinessSettings holds the business profile, invoice defaults and UI
// preferences of a single user
type BusinessSettings struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Business profile
	BusinessName string `gorm:"size:255" json:"business_name"`
	OwnerName    string `gorm:"size:255" json:"owner_name"`
	Email        string `gorm:"size:255" json:"email"`
	Phone        string `gorm:"size:50" json:"phone"`
	Address      string `gorm:"type:text" json:"address"`
	Website      string `gorm:"size:255" json:"website"`
	TaxID        string `gorm:"size:100" json:"tax_id"`

	// Invoice settings
	DefaultTax       float64 `gorm:"default:16" json:"default_tax"`
	Currency         string  `gorm:"size:10;default:'KSH'" json:"currency"`
	PaymentTerms     int     `gorm:"default:30" json:"payment_terms"`
	DefaultNotes     string  `gorm:"type:text" json:"default_notes"`
	IncludeSignature bool    `gorm:"default:false" json:"include_signature"`
	LogoURL          string  `gorm:"size:500" json:"logo_url"`
	InvoicePrefix    string  `gorm:"size:20;default:'INV'" json:"invoice_prefix"`

	// Preferences
	DarkMode           bool   `gorm:"default:false" json:"dark_mode"`
	EmailNotifications bool   `gorm:"default:true" json:"email_notifications"`
	AutoSave           bool   `gorm:"default:true" json:"auto_save"`
	DefaultView        string `gorm:"size:50;default:'dashboard'" json:"default_view"`
	CompactMode        bool   `gorm:"default:false" json:"compact_mode"`
	ShowTutorials      bool   `gorm:"default:true" json:"show_tutorials"`
}

// DefaultBusinessSettings returns the settings a new user starts with
func DefaultBusinessSettings(userID uuid.UUID) *BusinessSettings {
	return &BusinessSettings{
		UserID:             userID,
		DefaultTax:         DefaultTaxRate,
		Currency:           DefaultCurrency,
		PaymentTerms:       DefaultPaymentTerms,
		DefaultNotes:       DefaultInvoiceNotes,
		InvoicePrefix:      DefaultInvoicePrefix,
		EmailNotifications: true,
		AutoSave:           true,
		DefaultView:        "dashboard",
		ShowTutorials:      true,
	}
}

// NumberPrefix returns the configured invoice prefix or the default
func (s *BusinessSettings) NumberPrefix() string {
	if s == nil || s.InvoicePrefix == "" {
		return DefaultInvoicePrefix
	}
	return s.InvoicePrefix
}

// BeforeCreate generates a UUID before creating new settings
func (s *BusinessSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BusinessSettings model
func (BusinessSettings) TableName() string {
	return "business_settings"
}

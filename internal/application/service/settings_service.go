package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/repository"
	"github.com/sangkips/invoicely-api/pkg/apperror"
	"github.com/sangkips/invoicely-api/pkg/validation"
)

// SettingsService handles business settings
type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
	}
}

// GetSettings retrieves the user's settings, creating defaults if none exist
func (s *SettingsService) GetSettings(ctx context.Context, userID uuid.UUID) (*entity.BusinessSettings, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	if settings == nil {
		settings = entity.DefaultBusinessSettings(userID)
		if err := s.settingsRepo.Create(ctx, settings); err != nil {
			return nil, apperror.NewPersistenceError(err)
		}
	}

	return settings, nil
}

// UpdateSettingsInput represents the input for updating settings. Every field
// is written; callers send the full document.
type UpdateSettingsInput struct {
	UserID uuid.UUID `json:"-"`

	BusinessName string `json:"business_name"`
	OwnerName    string `json:"owner_name"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Website      string `json:"website" validate:"omitempty,url"`
	TaxID        string `json:"tax_id"`

	DefaultTax       float64 `json:"default_tax" validate:"gte=0"`
	Currency         string  `json:"currency" validate:"required,max=10"`
	PaymentTerms     int     `json:"payment_terms" validate:"gte=0,lte=365"`
	DefaultNotes     string  `json:"default_notes"`
	IncludeSignature bool    `json:"include_signature"`
	LogoURL          string  `json:"logo_url"`
	InvoicePrefix    string  `json:"invoice_prefix" validate:"required,max=20,alphanum"`

	DarkMode           bool   `json:"dark_mode"`
	EmailNotifications bool   `json:"email_notifications"`
	AutoSave           bool   `json:"auto_save"`
	DefaultView        string `json:"default_view"`
	CompactMode        bool   `json:"compact_mode"`
	ShowTutorials      bool   `json:"show_tutorials"`
}

// UpdateSettings updates the user's settings
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.BusinessSettings, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	// defaults are stored first so zero-valued fields below are written by Save
	settings, err := s.GetSettings(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	settings.BusinessName = input.BusinessName
	settings.OwnerName = input.OwnerName
	settings.Email = input.Email
	settings.Phone = input.Phone
	settings.Address = input.Address
	settings.Website = input.Website
	settings.TaxID = input.TaxID

	settings.DefaultTax = input.DefaultTax
	settings.Currency = input.Currency
	settings.PaymentTerms = input.PaymentTerms
	settings.DefaultNotes = input.DefaultNotes
	settings.IncludeSignature = input.IncludeSignature
	settings.LogoURL = input.LogoURL
	settings.InvoicePrefix = input.InvoicePrefix

	settings.DarkMode = input.DarkMode
	settings.EmailNotifications = input.EmailNotifications
	settings.AutoSave = input.AutoSave
	settings.DefaultView = input.DefaultView
	settings.CompactMode = input.CompactMode
	settings.ShowTutorials = input.ShowTutorials

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	return settings, nil
}

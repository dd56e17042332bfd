package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/repository"
	"gorm.io/gorm"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// GetByUserID retrieves settings by user ID
func (r *settingsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.BusinessSettings, error) {
	var settings entity.BusinessSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

// Create stores a new settings row
func (r *settingsRepository) Create(ctx context.Context, settings *entity.BusinessSettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

// Update saves every column, zero values included
func (r *settingsRepository) Update(ctx context.Context, settings *entity.BusinessSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

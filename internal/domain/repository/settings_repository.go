package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
)

// SettingsRepository defines the interface for business settings data access
type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.BusinessSettings, error)
	Create(ctx context.Context, settings *entity.BusinessSettings) error
	Update(ctx context.Context, settings *entity.BusinessSettings) error
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sentrymeet/sentrymeet/internal/domain/entities"
	"github.com/sentrymeet/sentrymeet/internal/domain/repositories"
)

// alertRepository implements the AlertRepository interface
type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *gorm.DB) repositories.AlertRepository {
	return &alertRepository{db: db}
}

// Create inserts an alert record
func (r *alertRepository) Create(ctx context.Context, alert *entities.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// FindByCall retrieves all alerts of a call
func (r *alertRepository) FindByCall(ctx context.Context, callID uuid.UUID) ([]*entities.Alert, error) {
	var alerts []*entities.Alert
	err := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Order("created_at ASC").
		Find(&alerts).Error
	return alerts, err
}

// DeleteByCall removes all alerts of a call
func (r *alertRepository) DeleteByCall(ctx context.Context, callID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Delete(&entities.Alert{}).Error
}

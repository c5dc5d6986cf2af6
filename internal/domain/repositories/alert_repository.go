package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/sentrymeet/sentrymeet/internal/domain/entities"
)

// AlertRepository persists threat alerts
type AlertRepository interface {
	// Create inserts an alert. Alerts are immutable; there is no merge.
	Create(ctx context.Context, alert *entities.Alert) error

	// FindByCall returns every alert raised during a call.
	FindByCall(ctx context.Context, callID uuid.UUID) ([]*entities.Alert, error)

	// DeleteByCall removes all alerts of a call.
	DeleteByCall(ctx context.Context, callID uuid.UUID) error
}

package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sentrymeet/sentrymeet/internal/domain/entities"
)

// ErrActiveCallExists is returned by Create when another session won the
// race to open the call for a room. Callers should re-fetch the active call
// and join it instead.
var ErrActiveCallExists = errors.New("an active call already exists for this room")

// CallRepository persists call records
type CallRepository interface {
	// FindActive returns the single active call for a room, or
	// gorm.ErrRecordNotFound when the room has none.
	FindActive(ctx context.Context, roomID string) (*entities.Call, error)

	// Create opens a new active call with its first participant. Returns
	// ErrActiveCallExists when a concurrent writer already opened one.
	Create(ctx context.Context, roomID string, first entities.Participant) (*entities.Call, error)

	// AddParticipant appends a participant unless an equivalent one (same
	// user id, or same name when no id) is already listed. Safe under
	// concurrent writers for the same call.
	AddParticipant(ctx context.Context, callID uuid.UUID, p entities.Participant) error

	// FindByID returns a call by primary key.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Call, error)

	// FindLatestByRoom returns the most recently started call for a room,
	// active or not.
	FindLatestByRoom(ctx context.Context, roomID string) (*entities.Call, error)

	// Delete removes a call record.
	Delete(ctx context.Context, id uuid.UUID) error
}

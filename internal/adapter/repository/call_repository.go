package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sentrymeet/sentrymeet/internal/domain/entities"
	"github.com/sentrymeet/sentrymeet/internal/domain/repositories"
)

// callRepository implements the CallRepository interface
type callRepository struct {
	db *gorm.DB
}

// NewCallRepository creates a new call repository
func NewCallRepository(db *gorm.DB) repositories.CallRepository {
	return &callRepository{db: db}
}

// FindActive retrieves the active call for a room
func (r *callRepository) FindActive(ctx context.Context, roomID string) (*entities.Call, error) {
	var call entities.Call
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND is_active = ?", roomID, true).
		First(&call).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

// Create opens a new active call. The partial unique index on
// calls(room_id) WHERE is_active guarantees a single winner when two
// sessions start in an empty room at once; the loser gets
// ErrActiveCallExists.
func (r *callRepository) Create(ctx context.Context, roomID string, first entities.Participant) (*entities.Call, error) {
	call := entities.NewCall(roomID, first)
	err := r.db.WithContext(ctx).Create(call).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, repositories.ErrActiveCallExists
		}
		return nil, err
	}
	return call, nil
}

// AddParticipant appends a participant if no equivalent one is present.
// The row lock serializes the read-modify-write against concurrent joins.
func (r *callRepository) AddParticipant(ctx context.Context, callID uuid.UUID, p entities.Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var call entities.Call
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", callID).
			First(&call).Error; err != nil {
			return err
		}

		if call.HasParticipant(p) {
			return nil
		}

		call.Participants = append(call.Participants, p)
		return tx.Model(&entities.Call{}).
			Where("id = ?", callID).
			Update("participants", call.Participants).Error
	})
}

// FindByID retrieves a call by its ID
func (r *callRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Call, error) {
	var call entities.Call
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&call).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

// FindLatestByRoom retrieves the most recently started call for a room
func (r *callRepository) FindLatestByRoom(ctx context.Context, roomID string) (*entities.Call, error) {
	var call entities.Call
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("started_at DESC").
		First(&call).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

// Delete removes a call record
func (r *callRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entities.Call{}, "id = ?", id).Error
}

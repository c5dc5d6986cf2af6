package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sentrymeet/sentrymeet/internal/domain/entities"
	"github.com/sentrymeet/sentrymeet/internal/domain/repositories"
)

// transcriptRepository implements the TranscriptRepository interface
type transcriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) repositories.TranscriptRepository {
	return &transcriptRepository{db: db}
}

// AppendSegment appends one recognized segment to the participant's
// transcript, creating the row on first use. The row lock keeps concurrent
// appends to the same document from losing segments; the unique indexes on
// (call_id, user_id) / (call_id, user_name) keep concurrent first appends
// from creating two rows for the same pair.
func (r *transcriptRepository) AppendSegment(ctx context.Context, callID uuid.UUID, userID *uuid.UUID, userName string, seg entities.TranscriptSegment) error {
	err := r.appendSegment(ctx, callID, userID, userName, seg)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the create race; the row exists now, append to it.
		return r.appendSegment(ctx, callID, userID, userName, seg)
	}
	return err
}

func (r *transcriptRepository) appendSegment(ctx context.Context, callID uuid.UUID, userID *uuid.UUID, userName string, seg entities.TranscriptSegment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc entities.Transcript
		query := tx.Clauses(clause.Locking{Strength: "UPDATE"})
		if userID != nil {
			query = query.Where("call_id = ? AND user_id = ?", callID, *userID)
		} else {
			query = query.Where("call_id = ? AND user_id IS NULL AND user_name = ?", callID, userName)
		}

		err := query.First(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			doc = entities.Transcript{
				ID:            uuid.New(),
				CallID:        callID,
				UserID:        userID,
				UserName:      userName,
				Segments:      datatypes.NewJSONSlice([]entities.TranscriptSegment{seg}),
				CreatedAt:     time.Now(),
				LastUpdatedAt: time.Now(),
			}
			return tx.Create(&doc).Error
		}
		if err != nil {
			return err
		}

		doc.Segments = append(doc.Segments, seg)
		return tx.Model(&entities.Transcript{}).
			Where("id = ?", doc.ID).
			Updates(map[string]interface{}{
				"segments":        doc.Segments,
				"last_updated_at": time.Now(),
			}).Error
	})
}

// FindByCall retrieves all transcripts of a call
func (r *transcriptRepository) FindByCall(ctx context.Context, callID uuid.UUID) ([]*entities.Transcript, error) {
	var transcripts []*entities.Transcript
	err := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Order("created_at ASC").
		Find(&transcripts).Error
	return transcripts, err
}

// DeleteByCall removes all transcripts of a call
func (r *transcriptRepository) DeleteByCall(ctx context.Context, callID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Delete(&entities.Transcript{}).Error
}

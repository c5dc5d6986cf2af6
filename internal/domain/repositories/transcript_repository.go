package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/sentrymeet/sentrymeet/internal/domain/entities"
)

// TranscriptRepository persists per-participant transcripts
type TranscriptRepository interface {
	// AppendSegment finds or creates the transcript for (callID, user) and
	// appends the segment, bumping last_updated_at. Concurrent appends to
	// the same document must not lose segments.
	AppendSegment(ctx context.Context, callID uuid.UUID, userID *uuid.UUID, userName string, seg entities.TranscriptSegment) error

	// FindByCall returns every participant transcript of a call.
	FindByCall(ctx context.Context, callID uuid.UUID) ([]*entities.Transcript, error)

	// DeleteByCall removes all transcripts of a call.
	DeleteByCall(ctx context.Context, callID uuid.UUID) error
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TranscriptSegment is one unit of recognized text with timing and
// language metadata. Segments are appended as recognized, never rewritten;
// the upstream recognizer gives no partial/final distinction, so every
// non-empty result becomes a permanent segment.
type TranscriptSegment struct {
	Text       string    `json:"text"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Language   string    `json:"language"`
	Confidence *float64  `json:"confidence,omitempty"`
}

// Transcript accumulates the speech segments of one participant within one
// call. At most one transcript row exists per (call, participant) pair.
type Transcript struct {
	ID            uuid.UUID                              `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CallID        uuid.UUID                              `gorm:"type:uuid;not null;index" json:"call_id"`
	UserID        *uuid.UUID                             `gorm:"type:uuid;index" json:"user_id,omitempty"`
	UserName      string                                 `gorm:"type:varchar(255)" json:"user_name"`
	Segments      datatypes.JSONSlice[TranscriptSegment] `gorm:"type:jsonb" json:"segments"`
	CreatedAt     time.Time                              `gorm:"default:now()" json:"created_at"`
	LastUpdatedAt time.Time                              `gorm:"default:now()" json:"last_updated_at"`
}

// TableName specifies the table name for Transcript
func (Transcript) TableName() string {
	return "transcripts"
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Participant is one attendee embedded in a call record.
type Participant struct {
	UserID  *uuid.UUID `json:"userId,omitempty"`
	Name    string     `json:"name"`
	JoinAt  time.Time  `json:"joinAt"`
	LeaveAt *time.Time `json:"leaveAt,omitempty"`
}

// Matches reports whether other identifies the same participant: by user id
// when both sides carry one, otherwise by display name.
func (p Participant) Matches(other Participant) bool {
	if p.UserID != nil && other.UserID != nil {
		return *p.UserID == *other.UserID
	}
	return p.Name == other.Name
}

// Call is the persisted record of one meeting instance for transcription
// purposes. Room ids are reused across time; at most one call per room is
// active at once (enforced by a partial unique index on room_id).
type Call struct {
	ID           uuid.UUID                        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RoomID       string                           `gorm:"type:varchar(255);not null;index" json:"room_id"`
	StartedAt    time.Time                        `gorm:"default:now()" json:"started_at"`
	EndedAt      *time.Time                       `json:"ended_at,omitempty"`
	Participants datatypes.JSONSlice[Participant] `gorm:"type:jsonb" json:"participants"`
	IsActive     bool                             `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt    time.Time                        `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for Call
func (Call) TableName() string {
	return "calls"
}

// HasParticipant checks whether an equivalent participant is already listed.
func (c *Call) HasParticipant(p Participant) bool {
	for _, existing := range c.Participants {
		if existing.Matches(p) {
			return true
		}
	}
	return false
}

// NewCall creates an active call for a room with its first participant.
func NewCall(roomID string, first Participant) *Call {
	now := time.Now()
	return &Call{
		ID:           uuid.New(),
		RoomID:       roomID,
		StartedAt:    now,
		Participants: datatypes.NewJSONSlice([]Participant{first}),
		IsActive:     true,
		CreatedAt:    now,
	}
}

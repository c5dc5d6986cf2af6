package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AlertSeverity grades a detected threat.
type AlertSeverity string

const (
	AlertSeverityLow    AlertSeverity = "low"
	AlertSeverityMedium AlertSeverity = "medium"
	AlertSeverityHigh   AlertSeverity = "high"
)

// Alert records one threat occurrence detected in a transcript segment.
// Alerts are immutable once created.
type Alert struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CallID       uuid.UUID                   `gorm:"type:uuid;not null;index" json:"call_id"`
	UserID       *uuid.UUID                  `gorm:"type:uuid" json:"user_id,omitempty"`
	UserName     string                      `gorm:"type:varchar(255)" json:"user_name"`
	MatchedWords datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"matched_words"`
	Context      string                      `gorm:"type:text" json:"context"`
	Severity     AlertSeverity               `gorm:"type:varchar(10);not null;default:'medium'" json:"severity"`
	CreatedAt    time.Time                   `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for Alert
func (Alert) TableName() string {
	return "alerts"
}

// Package call holds the REST payloads for call history endpoints.
package call

import (
	"time"

	"github.com/sentrymeet/sentrymeet/internal/domain/entities"
)

// ParticipantResponse is one call participant.
type ParticipantResponse struct {
	UserID string    `json:"userId,omitempty"`
	Name   string    `json:"name"`
	JoinAt time.Time `json:"joinAt"`
}

// CallResponse is the call record as returned by the API.
type CallResponse struct {
	ID           string                `json:"id"`
	RoomID       string                `json:"roomId"`
	StartedAt    time.Time             `json:"startedAt"`
	EndedAt      *time.Time            `json:"endedAt,omitempty"`
	IsActive     bool                  `json:"isActive"`
	Participants []ParticipantResponse `json:"participants"`
}

// SegmentResponse mirrors the stored transcript segment.
type SegmentResponse struct {
	Text       string    `json:"text"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Language   string    `json:"language"`
	Confidence *float64  `json:"confidence,omitempty"`
}

// TranscriptResponse is one participant's transcript document.
type TranscriptResponse struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId,omitempty"`
	UserName      string            `json:"userName"`
	Segments      []SegmentResponse `json:"segments"`
	LastUpdatedAt time.Time         `json:"lastUpdatedAt"`
}

// AlertResponse is one stored threat alert.
type AlertResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId,omitempty"`
	UserName     string    `json:"userName"`
	MatchedWords []string  `json:"matchedWords"`
	Context      string    `json:"context"`
	Severity     string    `json:"severity"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SummaryResponse carries the generated call summary.
type SummaryResponse struct {
	CallID  string `json:"callId"`
	Summary string `json:"summary"`
}

// FromCall converts the entity.
func FromCall(c *entities.Call) CallResponse {
	resp := CallResponse{
		ID:        c.ID.String(),
		RoomID:    c.RoomID,
		StartedAt: c.StartedAt,
		EndedAt:   c.EndedAt,
		IsActive:  c.IsActive,
	}
	for _, p := range c.Participants {
		pr := ParticipantResponse{Name: p.Name, JoinAt: p.JoinAt}
		if p.UserID != nil {
			pr.UserID = p.UserID.String()
		}
		resp.Participants = append(resp.Participants, pr)
	}
	return resp
}

// FromTranscript converts the entity.
func FromTranscript(t *entities.Transcript) TranscriptResponse {
	resp := TranscriptResponse{
		ID:            t.ID.String(),
		UserName:      t.UserName,
		LastUpdatedAt: t.LastUpdatedAt,
	}
	if t.UserID != nil {
		resp.UserID = t.UserID.String()
	}
	for _, s := range t.Segments {
		resp.Segments = append(resp.Segments, SegmentResponse{
			Text:       s.Text,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			Language:   s.Language,
			Confidence: s.Confidence,
		})
	}
	return resp
}

// FromAlert converts the entity.
func FromAlert(a *entities.Alert) AlertResponse {
	resp := AlertResponse{
		ID:           a.ID.String(),
		UserName:     a.UserName,
		MatchedWords: []string(a.MatchedWords),
		Context:      a.Context,
		Severity:     string(a.Severity),
		CreatedAt:    a.CreatedAt,
	}
	if a.UserID != nil {
		resp.UserID = a.UserID.String()
	}
	return resp
}

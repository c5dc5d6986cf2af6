// Package transcription holds the wire payloads exchanged over the
// persistent socket channel, in both directions.
package transcription

import "encoding/json"

// Client -> server event names.
const (
	EventJoinRoom = "join-room"
	EventStart    = "transcription:start"
	EventAudio    = "transcription:audio"
	EventStop     = "transcription:stop"
)

// Server -> client event names.
const (
	EventStatus     = "transcript:status"
	EventTranscript = "transcript:new"
	EventAlert      = "alert:new"
)

// Envelope frames every message on the socket channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRoomRequest subscribes the connection to a room's broadcasts.
type JoinRoomRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

// UserRef identifies the requesting participant. ID is optional; Name
// falls back to a default server-side.
type UserRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// StartRequest begins a live transcription session.
type StartRequest struct {
	RoomID   string  `json:"roomId" validate:"required"`
	Language string  `json:"language"`
	User     UserRef `json:"user"`
}

// AudioRequest carries one base64-encoded PCM16/16kHz mono chunk.
type AudioRequest struct {
	Chunk string `json:"chunk" validate:"required,base64"`
}

// StatusEvent reports the session state to the originating connection only.
type StatusEvent struct {
	Status   string `json:"status"` // "active" | "error" | "idle"
	Reason   string `json:"reason,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// SegmentPayload is one recognized segment as broadcast to the room.
type SegmentPayload struct {
	Text      string `json:"text"`
	IsPartial bool   `json:"isPartial"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds, wall clock
	Language  string `json:"language"`
}

// TranscriptEvent is broadcast to every room member on recognized text.
type TranscriptEvent struct {
	UserID   string         `json:"userId,omitempty"`
	UserName string         `json:"userName"`
	Segment  SegmentPayload `json:"segment"`
}

// AlertPayload is the alert body as broadcast to the room.
type AlertPayload struct {
	MatchedWords []string `json:"matchedWords"`
	Context      string   `json:"context"`
	Severity     string   `json:"severity"`
	CreatedAt    int64    `json:"createdAt"` // unix milliseconds
}

// AlertEvent is broadcast to every room member on a detected threat.
type AlertEvent struct {
	UserID   string       `json:"userId,omitempty"`
	UserName string       `json:"userName"`
	Alert    AlertPayload `json:"alert"`
}

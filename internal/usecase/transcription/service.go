// Package transcription coordinates live transcription sessions: one
// session per connected socket, owning the upstream recognition stream,
// the threat scan side path, persistence, and room broadcasts.
package transcription

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sentrymeet/sentrymeet/internal/domain/repositories"
	"github.com/sentrymeet/sentrymeet/internal/infrastructure/external/stt"
)

// Broadcaster fans an event out to every member of a room.
type Broadcaster interface {
	Publish(ctx context.Context, roomID, event string, payload interface{})
}

// Emitter delivers an event to the originating connection only.
type Emitter interface {
	Enqueue(event string, payload interface{})
}

// Archiver stores a session's captured audio after it stops.
type Archiver interface {
	UploadAudio(ctx context.Context, objectName string, wav []byte) error
}

// Config tunes the session coordinator.
type Config struct {
	ProviderName    string
	DefaultLanguage string
	DialTimeout     time.Duration
	// MaxArchiveBytes bounds the per-session audio buffer; zero disables
	// archiving entirely.
	MaxArchiveBytes int64
}

// Service owns the shared dependencies of all sessions.
type Service struct {
	calls       repositories.CallRepository
	transcripts repositories.TranscriptRepository
	alerts      repositories.AlertRepository
	provider    stt.Provider
	broadcaster Broadcaster
	archiver    Archiver
	cfg         Config
	logger      *zap.Logger
}

// NewService creates the session coordinator service. archiver may be nil.
func NewService(
	calls repositories.CallRepository,
	transcripts repositories.TranscriptRepository,
	alerts repositories.AlertRepository,
	provider stt.Provider,
	broadcaster Broadcaster,
	archiver Archiver,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en-IN"
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	return &Service{
		calls:       calls,
		transcripts: transcripts,
		alerts:      alerts,
		provider:    provider,
		broadcaster: broadcaster,
		archiver:    archiver,
		cfg:         cfg,
		logger:      logger,
	}
}

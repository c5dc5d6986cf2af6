package transcription

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dto "github.com/sentrymeet/sentrymeet/internal/adapter/dto/transcription"
	"github.com/sentrymeet/sentrymeet/internal/domain/entities"
	"github.com/sentrymeet/sentrymeet/internal/domain/repositories"
	"github.com/sentrymeet/sentrymeet/internal/infrastructure/external/stt"
	"github.com/sentrymeet/sentrymeet/internal/usecase/threat"
	"github.com/sentrymeet/sentrymeet/pkg/audio"
	"github.com/sentrymeet/sentrymeet/pkg/pcm"
)

// State is the lifecycle phase of a session.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateActive
	StateStopping
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

const defaultUserName = "Participant"

// Session is the live state of one participant's transcription request.
// It is owned by a single connection: Start/Audio/Stop/Disconnect arrive
// sequentially from the read pump, while recognition results arrive on the
// pump goroutine. The mutex covers that overlap; sessions never share
// mutable state with each other.
type Session struct {
	svc     *Service
	emitter Emitter
	id      uuid.UUID
	writer  *writer

	mu       sync.Mutex
	state    State
	callID   uuid.UUID
	roomID   string
	language string
	userID   *uuid.UUID
	userName string

	stream   stt.Stream
	pumpQuit chan struct{}
	pumpDone chan struct{}

	audioBuf    []byte
	archiveFull bool
}

// NewSession creates a session bound to one connection's emitter.
func (s *Service) NewSession(emitter Emitter) *Session {
	return &Session{
		svc:     s,
		emitter: emitter,
		id:      uuid.New(),
		writer:  newWriter(s.logger),
		state:   StateIdle,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start transitions Idle -> Starting -> Active: resolves the call record
// and language, then opens the upstream recognition stream under a bounded
// dial timeout. A start over a live session replaces its stream.
func (s *Session) Start(ctx context.Context, req dto.StartRequest) {
	// Replace any previous stream first so a re-start cannot leak one.
	s.teardownStream()

	s.mu.Lock()
	s.state = StateStarting
	s.roomID = req.RoomID
	s.userName = req.User.Name
	if s.userName == "" {
		s.userName = defaultUserName
	}
	s.userID = nil
	if req.User.ID != "" {
		if uid, err := uuid.Parse(req.User.ID); err == nil {
			s.userID = &uid
		}
	}
	s.language = ResolveLanguage(req.Language, s.svc.cfg.DefaultLanguage)
	roomID, language := s.roomID, s.language
	userID, userName := s.userID, s.userName
	s.mu.Unlock()

	s.svc.logger.Info("starting transcription session",
		zap.String("session_id", s.id.String()),
		zap.String("room_id", roomID),
		zap.String("user_name", userName),
		zap.String("language", language))

	callID := s.ensureCall(ctx, roomID, userID, userName)

	dialCtx, cancel := context.WithTimeout(ctx, s.svc.cfg.DialTimeout)
	defer cancel()
	stream, err := s.svc.provider.OpenStream(dialCtx, language)
	if err != nil {
		s.svc.logger.Error("upstream connection failed",
			zap.String("session_id", s.id.String()), zap.Error(err))
		s.mu.Lock()
		s.state = StateError
		s.mu.Unlock()
		s.emitter.Enqueue(dto.EventStatus, dto.StatusEvent{
			Status: "error",
			Reason: "speech service connection failed",
		})
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if s.state != StateStarting {
		// Stopped or disconnected while dialing; abandon the stream.
		s.mu.Unlock()
		_ = stream.Close()
		return
	}
	s.callID = callID
	s.stream = stream
	s.state = StateActive
	quit := make(chan struct{})
	done := make(chan struct{})
	s.pumpQuit = quit
	s.pumpDone = done
	s.mu.Unlock()

	go s.pump(stream, quit, done)

	s.emitter.Enqueue(dto.EventStatus, dto.StatusEvent{
		Status:   "active",
		Provider: s.svc.cfg.ProviderName,
	})
}

// ensureCall finds or creates the active call for the room and makes sure
// the participant is listed. A persistence failure here is logged and the
// session carries on without a call record, matching the rest of the
// swallow-persistence-errors contract; transcripts and alerts are then
// broadcast-only.
func (s *Session) ensureCall(ctx context.Context, roomID string, userID *uuid.UUID, userName string) uuid.UUID {
	p := entities.Participant{UserID: userID, Name: userName, JoinAt: time.Now()}

	call, err := s.svc.calls.FindActive(ctx, roomID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		call, err = s.svc.calls.Create(ctx, roomID, p)
		if errors.Is(err, repositories.ErrActiveCallExists) {
			// Another session opened the call first; join it.
			call, err = s.svc.calls.FindActive(ctx, roomID)
		}
		if err == nil {
			if !call.HasParticipant(p) {
				if aerr := s.svc.calls.AddParticipant(ctx, call.ID, p); aerr != nil {
					s.svc.logger.Error("add participant", zap.String("room_id", roomID), zap.Error(aerr))
				}
			}
			return call.ID
		}
	} else if err == nil {
		if !call.HasParticipant(p) {
			if aerr := s.svc.calls.AddParticipant(ctx, call.ID, p); aerr != nil {
				s.svc.logger.Error("add participant", zap.String("room_id", roomID), zap.Error(aerr))
			}
		}
		return call.ID
	}

	s.svc.logger.Error("managing call record failed", zap.String("room_id", roomID), zap.Error(err))
	return uuid.Nil
}

// Audio forwards one inbound chunk upstream. Chunks arriving while no
// stream is open are dropped without error or backpressure.
func (s *Session) Audio(ctx context.Context, chunk string) {
	s.mu.Lock()
	stream := s.stream
	active := s.state == StateActive
	s.mu.Unlock()

	if !active || stream == nil {
		return
	}
	if err := stream.Send(ctx, chunk); err != nil {
		s.svc.logger.Debug("audio forward failed", zap.Error(err))
		return
	}
	s.bufferAudio(chunk)
}

// pump consumes recognition results until the stream ends, errors, or the
// session detaches it.
func (s *Session) pump(stream stt.Stream, quit, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-quit:
			return
		case r, ok := <-stream.Results():
			if !ok {
				// The stream closes its result channel after pushing a
				// failure to the error channel, so a pending error must
				// win over the clean-close path.
				select {
				case err := <-stream.Errors():
					if err != nil {
						s.handleUpstreamError(stream, err)
						return
					}
				default:
				}
				s.handleUpstreamClose(stream)
				return
			}
			s.handleResult(r)
		case err := <-stream.Errors():
			if err != nil {
				s.handleUpstreamError(stream, err)
			}
			return
		}
	}
}

// handleResult runs the per-result pipeline: threat scan, alert persist +
// broadcast, transcript broadcast, segment append. Persistence goes through
// the session writer so the pump never waits on the database.
func (s *Session) handleResult(r stt.Result) {
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return
	}

	s.mu.Lock()
	callID, roomID, language := s.callID, s.roomID, s.language
	userID, userName := s.userID, s.userName
	s.mu.Unlock()

	now := time.Now()
	userIDStr := ""
	if userID != nil {
		userIDStr = userID.String()
	}

	if matched := threat.Scan(text); len(matched) > 0 {
		if callID != uuid.Nil {
			alert := &entities.Alert{
				ID:           uuid.New(),
				CallID:       callID,
				UserID:       userID,
				UserName:     userName,
				MatchedWords: datatypes.NewJSONSlice(matched),
				Context:      text,
				Severity:     entities.AlertSeverityHigh,
				CreatedAt:    now,
			}
			s.writer.enqueue(func(ctx context.Context) {
				if err := s.svc.alerts.Create(ctx, alert); err != nil {
					s.svc.logger.Error("persist alert", zap.String("call_id", callID.String()), zap.Error(err))
				}
			})
		}
		s.svc.broadcaster.Publish(context.Background(), roomID, dto.EventAlert, dto.AlertEvent{
			UserID:   userIDStr,
			UserName: userName,
			Alert: dto.AlertPayload{
				MatchedWords: matched,
				Context:      text,
				Severity:     string(entities.AlertSeverityHigh),
				CreatedAt:    now.UnixMilli(),
			},
		})
	}

	if callID != uuid.Nil {
		seg := entities.TranscriptSegment{
			Text:       text,
			StartTime:  now,
			EndTime:    now,
			Language:   language,
			Confidence: r.Confidence,
		}
		s.writer.enqueue(func(ctx context.Context) {
			if err := s.svc.transcripts.AppendSegment(ctx, callID, userID, userName, seg); err != nil {
				s.svc.logger.Error("append segment", zap.String("call_id", callID.String()), zap.Error(err))
			}
		})
	}

	// The upstream contract gives no partial/final distinction, so every
	// broadcast segment is marked partial and appended permanently.
	s.svc.broadcaster.Publish(context.Background(), roomID, dto.EventTranscript, dto.TranscriptEvent{
		UserID:   userIDStr,
		UserName: userName,
		Segment: dto.SegmentPayload{
			Text:      text,
			IsPartial: true,
			Timestamp: now.UnixMilli(),
			Language:  language,
		},
	})
}

// handleUpstreamClose settles the session after the recognizer ends the
// stream on its side: detach, report idle to the client, flush the audio
// archive. Mirrors Stop, except the close originated upstream.
func (s *Session) handleUpstreamClose(stream stt.Stream) {
	s.mu.Lock()
	if s.stream != stream {
		s.mu.Unlock()
		return
	}
	s.stream = nil
	s.pumpQuit = nil
	s.pumpDone = nil
	s.state = StateIdle
	s.mu.Unlock()

	_ = stream.Close()
	s.svc.logger.Info("upstream closed the stream",
		zap.String("session_id", s.id.String()))
	s.emitter.Enqueue(dto.EventStatus, dto.StatusEvent{Status: "idle"})
	s.flushArchive()
}

// handleUpstreamError surfaces a mid-stream failure to the originating
// client and abandons the stream. No automatic reconnect.
func (s *Session) handleUpstreamError(stream stt.Stream, err error) {
	s.mu.Lock()
	if s.stream != stream {
		s.mu.Unlock()
		return
	}
	s.stream = nil
	s.pumpQuit = nil
	s.pumpDone = nil
	s.state = StateError
	s.mu.Unlock()

	_ = stream.Close()
	s.svc.logger.Error("upstream stream error",
		zap.String("session_id", s.id.String()), zap.Error(err))
	s.emitter.Enqueue(dto.EventStatus, dto.StatusEvent{
		Status: "error",
		Reason: err.Error(),
	})

	s.mu.Lock()
	if s.state == StateError {
		s.state = StateIdle
	}
	s.mu.Unlock()
}

// Stop transitions Active -> Stopping -> Idle, closing the upstream
// stream. In-flight result handling completes before the state settles.
func (s *Session) Stop(ctx context.Context) {
	if !s.teardownStream() {
		return
	}
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
	s.emitter.Enqueue(dto.EventStatus, dto.StatusEvent{Status: "idle"})
	s.flushArchive()
}

// Disconnect tears everything down when the connection goes away: stream,
// audio archive, then the writer (draining queued persistence first).
func (s *Session) Disconnect(ctx context.Context) {
	s.teardownStream()
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
	s.flushArchive()
	s.writer.close()
}

// teardownStream detaches and closes the current stream, waiting for its
// pump to finish. Returns false when no stream was open.
func (s *Session) teardownStream() bool {
	s.mu.Lock()
	stream := s.stream
	quit, done := s.pumpQuit, s.pumpDone
	s.stream = nil
	s.pumpQuit = nil
	s.pumpDone = nil
	if stream != nil {
		s.state = StateStopping
	}
	s.mu.Unlock()

	if stream == nil {
		return false
	}
	if quit != nil {
		close(quit)
	}
	_ = stream.Close()
	if done != nil {
		<-done
	}
	return true
}

// bufferAudio accumulates decoded PCM for the post-session archive, bounded
// by config.
func (s *Session) bufferAudio(chunk string) {
	if s.svc.archiver == nil || s.svc.cfg.MaxArchiveBytes <= 0 {
		return
	}
	data, err := pcm.DecodeBase64(chunk)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if int64(len(s.audioBuf))+int64(len(data)) > s.svc.cfg.MaxArchiveBytes {
		if !s.archiveFull {
			s.archiveFull = true
			s.svc.logger.Warn("audio archive buffer full, discarding further audio",
				zap.String("session_id", s.id.String()))
		}
		return
	}
	s.audioBuf = append(s.audioBuf, data...)
}

// flushArchive ships the buffered audio as a WAV object, off the hot path.
func (s *Session) flushArchive() {
	if s.svc.archiver == nil {
		return
	}

	s.mu.Lock()
	data := s.audioBuf
	callID, roomID := s.callID, s.roomID
	s.audioBuf = nil
	s.archiveFull = false
	s.mu.Unlock()

	if len(data) == 0 {
		return
	}

	owner := roomID
	if callID != uuid.Nil {
		owner = callID.String()
	}
	objectName := "calls/" + owner + "/" + s.id.String() + ".wav"

	go func() {
		var buf bytes.Buffer
		if err := audio.WriteWav(&buf, data); err != nil {
			s.svc.logger.Error("build archive wav", zap.Error(err))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.svc.archiver.UploadAudio(ctx, objectName, buf.Bytes()); err != nil {
			s.svc.logger.Error("upload audio archive",
				zap.String("object", objectName), zap.Error(err))
		}
	}()
}

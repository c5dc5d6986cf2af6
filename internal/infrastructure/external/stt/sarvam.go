package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SarvamConfig holds connection parameters for the Sarvam streaming API.
type SarvamConfig struct {
	URL         string
	APIKey      string
	Model       string
	DialTimeout time.Duration
}

// SarvamProvider opens streaming recognition sessions against Sarvam.
type SarvamProvider struct {
	cfg    SarvamConfig
	logger *zap.Logger
}

// NewSarvamProvider creates a Sarvam streaming provider.
func NewSarvamProvider(cfg SarvamConfig, logger *zap.Logger) *SarvamProvider {
	if cfg.URL == "" {
		cfg.URL = "wss://api.sarvam.ai/speech-to-text/ws"
	}
	if cfg.Model == "" {
		cfg.Model = "saarika:v2.5"
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	return &SarvamProvider{cfg: cfg, logger: logger}
}

// OpenStream dials the recognizer for the given language code. The dial is
// bounded by the configured timeout so a session cannot wedge in Starting.
func (p *SarvamProvider) OpenStream(ctx context.Context, language string) (Stream, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse sarvam url: %w", err)
	}
	q := u.Query()
	q.Set("model", p.cfg.Model)
	q.Set("language-code", language)
	q.Set("sample_rate", "16000")
	q.Set("input_audio_codec", "wav")
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("api-subscription-key", p.cfg.APIKey)

	dialer := websocket.Dialer{HandshakeTimeout: p.cfg.DialTimeout}
	dialCtx, cancel := context.WithTimeout(ctx, p.cfg.DialTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, u.String(), headers)
	if err != nil {
		return nil, fmt.Errorf("dial sarvam: %w", err)
	}
	resp.Body.Close()

	s := &sarvamStream{
		conn:    conn,
		results: make(chan Result, 16),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
		logger:  p.logger,
	}
	go s.readLoop()

	p.logger.Info("sarvam stream opened",
		zap.String("language", language),
		zap.String("model", p.cfg.Model))
	return s, nil
}

type sarvamStream struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	results   chan Result
	errs      chan error
	done      chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

// audioMessage is the outbound frame shape Sarvam expects per chunk.
type audioMessage struct {
	Audio audioPayload `json:"audio"`
}

type audioPayload struct {
	Data       string `json:"data"`
	SampleRate string `json:"sample_rate"`
	Encoding   string `json:"encoding"`
}

// sarvamResponse is the inbound frame shape; anything that does not parse
// into this, or has a type other than "data", is discarded.
type sarvamResponse struct {
	Type string `json:"type"`
	Data struct {
		Transcript string `json:"transcript"`
	} `json:"data"`
}

func (s *sarvamStream) Send(ctx context.Context, base64Chunk string) error {
	select {
	case <-s.done:
		return fmt.Errorf("stream is closed")
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := audioMessage{
		Audio: audioPayload{
			Data:       base64Chunk,
			SampleRate: "16000",
			Encoding:   "audio/wav",
		},
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(msg)
}

func (s *sarvamStream) readLoop() {
	defer close(s.results)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// Closed locally, not an upstream failure.
			default:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Debug("sarvam stream closed by upstream")
				} else {
					select {
					case s.errs <- err:
					default:
					}
				}
			}
			return
		}

		var resp sarvamResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			continue // malformed frames are silently discarded
		}
		if resp.Type != "data" || resp.Data.Transcript == "" {
			continue
		}

		select {
		case s.results <- Result{Text: resp.Data.Transcript}:
		case <-s.done:
			return
		}
	}
}

func (s *sarvamStream) Results() <-chan Result { return s.results }

func (s *sarvamStream) Errors() <-chan error { return s.errs }

func (s *sarvamStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	return nil
}

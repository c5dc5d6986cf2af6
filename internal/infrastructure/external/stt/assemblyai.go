package stt

import (
	"context"
	"fmt"
	"sync"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/sentrymeet/sentrymeet/pkg/pcm"
)

// AssemblyAIConfig holds parameters for the AssemblyAI realtime API.
type AssemblyAIConfig struct {
	APIKey     string
	SampleRate int
}

// AssemblyAIProvider opens realtime sessions through the official SDK.
// The realtime endpoint is English-only, so the resolved language code is
// accepted but not forwarded.
type AssemblyAIProvider struct {
	cfg    AssemblyAIConfig
	logger *zap.Logger
}

// NewAssemblyAIProvider creates an AssemblyAI realtime provider.
func NewAssemblyAIProvider(cfg AssemblyAIConfig, logger *zap.Logger) *AssemblyAIProvider {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	return &AssemblyAIProvider{cfg: cfg, logger: logger}
}

// OpenStream connects a realtime transcriber session.
func (p *AssemblyAIProvider) OpenStream(ctx context.Context, language string) (Stream, error) {
	s := &assemblyAIStream{
		results: make(chan Result, 16),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}

	transcriber := &aai.RealTimeTranscriber{
		OnPartialTranscript: func(event aai.PartialTranscript) {
			s.deliver(Result{Text: event.Text})
		},
		OnFinalTranscript: func(event aai.FinalTranscript) {
			conf := event.Confidence
			s.deliver(Result{Text: event.Text, IsFinal: true, Confidence: &conf})
		},
		OnError: func(err error) {
			select {
			case s.errs <- err:
			default:
			}
		},
	}

	client := aai.NewRealTimeClientWithOptions(
		aai.WithRealTimeAPIKey(p.cfg.APIKey),
		aai.WithRealTimeSampleRate(p.cfg.SampleRate),
		aai.WithRealTimeTranscriber(transcriber),
	)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect assemblyai realtime: %w", err)
	}

	s.client = client
	p.logger.Info("assemblyai realtime stream opened",
		zap.String("requested_language", language),
		zap.Int("sample_rate", p.cfg.SampleRate))
	return s, nil
}

type assemblyAIStream struct {
	client    *aai.RealTimeClient
	results   chan Result
	errs      chan error
	done      chan struct{}
	closeOnce sync.Once
}

func (s *assemblyAIStream) deliver(r Result) {
	if r.Text == "" {
		return
	}
	select {
	case s.results <- r:
	case <-s.done:
	}
}

// Send decodes the base64 chunk and forwards the raw PCM bytes; unlike
// Sarvam, the SDK takes binary audio rather than a JSON envelope.
func (s *assemblyAIStream) Send(ctx context.Context, base64Chunk string) error {
	select {
	case <-s.done:
		return fmt.Errorf("stream is closed")
	default:
	}

	data, err := pcm.DecodeBase64(base64Chunk)
	if err != nil {
		return err
	}
	return s.client.Send(ctx, data)
}

func (s *assemblyAIStream) Results() <-chan Result { return s.results }

func (s *assemblyAIStream) Errors() <-chan error { return s.errs }

func (s *assemblyAIStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.client.Disconnect(context.Background(), true)
	})
	return err
}

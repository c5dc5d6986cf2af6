// Package sttmock provides a scripted STT provider for tests and local
// development without upstream credentials.
package sttmock

import (
	"context"
	"errors"
	"sync"

	"github.com/sentrymeet/sentrymeet/internal/infrastructure/external/stt"
)

// Provider opens scripted streams and keeps a handle to each so tests can
// drive recognition results and failures explicitly.
type Provider struct {
	mu      sync.Mutex
	DialErr error
	streams []*Stream
}

// New creates a mock provider.
func New() *Provider {
	return &Provider{}
}

// OpenStream returns a fresh scripted stream, or DialErr when configured.
func (p *Provider) OpenStream(ctx context.Context, language string) (stt.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.DialErr != nil {
		return nil, p.DialErr
	}
	s := &Stream{
		Language: language,
		results:  make(chan stt.Result, 16),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}
	p.streams = append(p.streams, s)
	return s, nil
}

// LastStream returns the most recently opened stream, or nil.
func (p *Provider) LastStream() *Stream {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.streams) == 0 {
		return nil
	}
	return p.streams[len(p.streams)-1]
}

// OpenCount returns how many streams have been opened.
func (p *Provider) OpenCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.streams)
}

// Stream records sent chunks and emits whatever the test scripts.
type Stream struct {
	Language string

	mu     sync.Mutex
	chunks []string
	closed bool

	results chan stt.Result
	errs    chan error
	done    chan struct{}
	endOnce sync.Once
}

// Send records the chunk.
func (s *Stream) Send(ctx context.Context, base64Chunk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream is closed")
	}
	s.chunks = append(s.chunks, base64Chunk)
	return nil
}

// Chunks returns a copy of every chunk sent so far.
func (s *Stream) Chunks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// EmitResult pushes a recognized text result to the consumer.
func (s *Stream) EmitResult(text string) {
	select {
	case s.results <- stt.Result{Text: text}:
	case <-s.done:
	}
}

// End closes the result channel, mirroring an upstream that finished the
// stream on its side. Script EmitError first to end with a failure.
func (s *Stream) End() {
	s.endOnce.Do(func() { close(s.results) })
}

// EmitError pushes a connection-level failure to the consumer.
func (s *Stream) EmitError(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

// Closed reports whether Close was called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Stream) Results() <-chan stt.Result { return s.results }

func (s *Stream) Errors() <-chan error { return s.errs }

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	return nil
}

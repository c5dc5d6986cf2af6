// Package stt defines the streaming speech-to-text provider contract and
// its implementations. A session opens one Stream per upstream connection,
// pushes base64 PCM16 chunks in, and consumes recognized text out.
package stt

import "context"

// Result is one recognized text result from the upstream provider.
type Result struct {
	Text string
	// IsFinal is carried for providers that distinguish partials from
	// finals. The Sarvam wire contract does not, so its streams always
	// report false and every result is treated the same downstream.
	IsFinal bool
	// Confidence is optional; nil when the provider gives none.
	Confidence *float64
}

// Stream is one open recognition stream.
type Stream interface {
	// Send forwards one base64-encoded PCM16/16kHz mono chunk upstream.
	Send(ctx context.Context, base64Chunk string) error

	// Results delivers recognized text. The channel is closed when the
	// stream ends cleanly.
	Results() <-chan Result

	// Errors delivers connection-level failures. A stream that errors is
	// dead; it is never retried automatically.
	Errors() <-chan error

	// Close tears the stream down. Safe to call more than once.
	Close() error
}

// Provider opens recognition streams for a resolved language code.
type Provider interface {
	OpenStream(ctx context.Context, language string) (Stream, error)
}

// Package audio provides the capture side of the transcription pipeline:
// it pulls fixed-rate mono frames from a Source and hands each frame to a
// sink as an independently encoded base64 PCM16 chunk. Chunk order is the
// transport's responsibility; nothing is buffered across frames.
package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sentrymeet/sentrymeet/pkg/pcm"
)

// SampleRate is the fixed capture rate expected by the upstream recognizer.
const SampleRate = 16000

// ErrDeviceUnavailable is returned by StartCapture when the audio source
// cannot be acquired (missing device, denied permission, file not found).
var ErrDeviceUnavailable = errors.New("audio device unavailable")

// Source supplies float32 samples in [-1, 1] at SampleRate, mono.
// Open acquires the device exclusively; Read returns one processing
// quantum and io.EOF when the source is exhausted.
type Source interface {
	Open() error
	Read() ([]float32, error)
	Close() error
}

// ChunkSink receives one base64-encoded PCM16 chunk per quantum.
type ChunkSink func(base64Chunk string)

// Capturer drives a Source and emits encoded chunks until stopped.
type Capturer struct {
	mu      sync.Mutex
	src     Source
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewCapturer creates a capturer over the given source.
func NewCapturer(src Source) *Capturer {
	return &Capturer{src: src}
}

// StartCapture acquires the source and begins emitting chunks to the sink.
// It fails with ErrDeviceUnavailable when the source cannot be opened and
// with an error when capture is already running.
func (c *Capturer) StartCapture(sink ChunkSink) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("capture already running")
	}
	if err := c.src.Open(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go c.pump(sink, c.stop, c.done)
	return nil
}

func (c *Capturer) pump(sink ChunkSink, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}

		frame, err := c.src.Read()
		if err != nil {
			// io.EOF and read failures both end capture; the caller
			// observes the stop through StopCapture or the sink going quiet.
			return
		}
		if len(frame) == 0 {
			continue
		}
		sink(pcm.EncodeBase64(frame))
	}
}

// StopCapture releases the source and all capture state. It is safe to call
// at any time, including before a successful StartCapture or repeatedly.
func (c *Capturer) StopCapture() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.running = false
	close(c.stop)
	<-c.done
	_ = c.src.Close()
}

// Running reports whether capture is currently active.
func (c *Capturer) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Drain reads a source to completion without a capturer, returning every
// chunk. Used by tools that need offline encoding rather than live capture.
func Drain(src Source) ([]string, error) {
	if err := src.Open(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	defer src.Close()

	var chunks []string
	for {
		frame, err := src.Read()
		if errors.Is(err, io.EOF) {
			return chunks, nil
		}
		if err != nil {
			return chunks, err
		}
		if len(frame) > 0 {
			chunks = append(chunks, pcm.EncodeBase64(frame))
		}
	}
}

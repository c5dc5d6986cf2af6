package audio

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sentrymeet/sentrymeet/pkg/pcm"
)

// stubSource replays fixed frames and records lifecycle calls.
type stubSource struct {
	mu      sync.Mutex
	frames  [][]float32
	idx     int
	openErr error
	opened  int
	closed  int
}

func (s *stubSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return s.openErr
	}
	s.opened++
	return nil
}

func (s *stubSource) Read() ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.idx]
	s.idx++
	return f, nil
}

func (s *stubSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func TestStartCapture_DeviceUnavailable(t *testing.T) {
	src := &stubSource{openErr: errors.New("permission denied")}
	c := NewCapturer(src)

	err := c.StartCapture(func(string) {})
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}

	// StopCapture after a failed start must be a no-op.
	c.StopCapture()
	if src.closed != 0 {
		t.Fatalf("source closed %d times after failed start", src.closed)
	}
}

func TestCapture_EmitsChunksInOrder(t *testing.T) {
	src := &stubSource{frames: [][]float32{{0.1, 0.2}, {0.3, 0.4}, {-0.5}}}
	c := NewCapturer(src)

	var mu sync.Mutex
	var chunks []string
	err := c.StartCapture(func(chunk string) {
		mu.Lock()
		chunks = append(chunks, chunk)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("StartCapture failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(chunks)
		mu.Unlock()
		if n == 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for chunks, got %d", n)
		case <-time.After(5 * time.Millisecond):
		}
	}

	c.StopCapture()

	want := []string{
		pcm.EncodeBase64([]float32{0.1, 0.2}),
		pcm.EncodeBase64([]float32{0.3, 0.4}),
		pcm.EncodeBase64([]float32{-0.5}),
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestStopCapture_Idempotent(t *testing.T) {
	src := &stubSource{frames: [][]float32{{0.1}}}
	c := NewCapturer(src)

	if err := c.StartCapture(func(string) {}); err != nil {
		t.Fatalf("StartCapture failed: %v", err)
	}
	c.StopCapture()
	c.StopCapture()
	c.StopCapture()

	if src.closed != 1 {
		t.Fatalf("source closed %d times, want 1", src.closed)
	}
	if c.Running() {
		t.Fatal("capturer still running after stop")
	}
}

func TestWavSource_RoundTrip(t *testing.T) {
	samples := make([]float32, 1000)
	for i := range samples {
		samples[i] = float32(i%200)/200 - 0.5
	}
	raw := pcm.Encode(samples)

	var buf bytes.Buffer
	if err := WriteWav(&buf, raw); err != nil {
		t.Fatalf("WriteWav failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.wav")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	src := &WavSource{Path: path, FrameSamples: 256}
	chunks, err := Drain(src)
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if len(chunks) != 4 { // 1000 samples / 256 per frame
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}

	var got []byte
	for _, c := range chunks {
		data, err := pcm.DecodeBase64(c)
		if err != nil {
			t.Fatalf("chunk decode: %v", err)
		}
		got = append(got, data...)
	}
	if len(got) != len(raw) {
		t.Fatalf("reassembled %d bytes, want %d", len(got), len(raw))
	}

	// The float detour re-quantizes, so allow one LSB per sample.
	origSamples, _ := pcm.Decode(raw)
	gotSamples, _ := pcm.Decode(got)
	for i := range origSamples {
		d := int(gotSamples[i]) - int(origSamples[i])
		if d < -1 || d > 1 {
			t.Fatalf("sample %d drifted by %d LSB", i, d)
		}
	}
}

func TestWavSource_RejectsWrongLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("not a wav file, just text padding to 44+ bytes......."), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	src := &WavSource{Path: path}
	if err := src.Open(); err == nil {
		src.Close()
		t.Fatal("expected header validation error")
	}
}

package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/sentrymeet/sentrymeet/pkg/pcm"
)

// DefaultFrameSamples is the number of samples handed out per Read call.
// 512 samples at 16 kHz is 32 ms per chunk.
const DefaultFrameSamples = 512

// WavSource reads a 16 kHz mono 16-bit PCM WAV file and replays it one
// frame at a time, standing in for a microphone on machines without one.
type WavSource struct {
	Path         string
	FrameSamples int

	f *os.File
}

// Open validates the WAV header and positions the reader at the data chunk.
func (w *WavSource) Open() error {
	if w.FrameSamples <= 0 {
		w.FrameSamples = DefaultFrameSamples
	}

	f, err := os.Open(w.Path)
	if err != nil {
		return err
	}

	header := make([]byte, 44)
	if _, err := io.ReadFull(f, header); err != nil {
		f.Close()
		return fmt.Errorf("read wav header: %w", err)
	}

	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		f.Close()
		return fmt.Errorf("%s is not a RIFF/WAVE file", w.Path)
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	if audioFormat != 1 || bitsPerSample != 16 {
		f.Close()
		return fmt.Errorf("unsupported wav format: format=%d bits=%d (want PCM16)", audioFormat, bitsPerSample)
	}
	if numChannels != 1 || sampleRate != SampleRate {
		f.Close()
		return fmt.Errorf("unsupported wav layout: channels=%d rate=%d (want mono %d Hz)", numChannels, sampleRate, SampleRate)
	}

	w.f = f
	return nil
}

// Read returns the next frame of float32 samples, io.EOF at end of file.
func (w *WavSource) Read() ([]float32, error) {
	if w.f == nil {
		return nil, fmt.Errorf("wav source is not open")
	}

	buf := make([]byte, w.FrameSamples*2)
	n, err := io.ReadFull(w.f, buf)
	if err == io.EOF || (err == io.ErrUnexpectedEOF && n == 0) {
		return nil, io.EOF
	}
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}

	// Trim to whole samples on a short final read.
	samples, err := pcm.Decode(buf[:n-n%2])
	if err != nil {
		return nil, err
	}

	frame := make([]float32, len(samples))
	for i, s := range samples {
		frame[i] = pcm.Int16ToFloat(s)
	}
	return frame, nil
}

// Close releases the underlying file.
func (w *WavSource) Close() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

// WriteWav writes raw little-endian PCM16 bytes as a minimal mono WAV file
// at the capture sample rate. Used by the session audio archive.
func WriteWav(dst io.Writer, pcmData []byte) error {
	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcmData)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)               // fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)                // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1)                // mono
	binary.LittleEndian.PutUint32(header[24:28], SampleRate)       // sample rate
	binary.LittleEndian.PutUint32(header[28:32], SampleRate*2)     // byte rate
	binary.LittleEndian.PutUint16(header[32:34], 2)                // block align
	binary.LittleEndian.PutUint16(header[34:36], 16)               // bits per sample
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcmData)))

	if _, err := dst.Write(header[:]); err != nil {
		return err
	}
	_, err := dst.Write(pcmData)
	return err
}

package pcm

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// FloatToInt16 converts one float32 sample in [-1, 1] to a signed 16-bit
// sample. Out-of-range input is clamped. Negative values scale by 0x8000 and
// non-negative by 0x7FFF; the upstream recognizer expects exactly this
// quantization, so the conversion must stay bit-exact.
func FloatToInt16(s float32) int16 {
	if s < -1 {
		s = -1
	}
	if s > 1 {
		s = 1
	}
	if s < 0 {
		return int16(s * 0x8000)
	}
	return int16(s * 0x7FFF)
}

// Int16ToFloat is the inverse of FloatToInt16, within one LSB of
// quantization error.
func Int16ToFloat(v int16) float32 {
	if v < 0 {
		return float32(v) / 0x8000
	}
	return float32(v) / 0x7FFF
}

// Encode packs float32 samples into little-endian 16-bit PCM bytes.
func Encode(samples []float32) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(FloatToInt16(s)))
	}
	return buf
}

// Decode unpacks little-endian 16-bit PCM bytes into int16 samples.
func Decode(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("pcm data length %d is not sample-aligned", len(data))
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples, nil
}

// EncodeBase64 converts float32 samples to the base64 chunk format carried
// by transcription:audio messages.
func EncodeBase64(samples []float32) string {
	return base64.StdEncoding.EncodeToString(Encode(samples))
}

// DecodeBase64 reverses EncodeBase64 back to raw PCM bytes.
func DecodeBase64(chunk string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(chunk)
	if err != nil {
		return nil, fmt.Errorf("decode audio chunk: %w", err)
	}
	return data, nil
}

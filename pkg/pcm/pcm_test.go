package pcm

import (
	"encoding/base64"
	"math"
	"testing"
)

func TestFloatToInt16_KnownValues(t *testing.T) {
	cases := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32768},
		{2, 32767},    // clamped
		{-3, -32768},  // clamped
		{0.5, 16383},   // 0.5 * 0x7FFF truncated
		{-0.5, -16384}, // -0.5 * 0x8000
	}
	for _, c := range cases {
		if got := FloatToInt16(c.in); got != c.want {
			t.Errorf("FloatToInt16(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestRoundTrip_WithinOneLSB(t *testing.T) {
	samples := make([]float32, 0, 2001)
	for i := -1000; i <= 1000; i++ {
		samples = append(samples, float32(i)/1000)
	}

	encoded := Encode(samples)
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(decoded), len(samples))
	}

	for i, s := range samples {
		back := Int16ToFloat(decoded[i])
		// one LSB of the coarser scale
		if math.Abs(float64(back-s)) > 1.0/0x7FFF {
			t.Fatalf("sample %d: round trip %v -> %v exceeds 1 LSB", i, s, back)
		}
	}
}

func TestEncode_LittleEndian(t *testing.T) {
	got := Encode([]float32{1})
	if got[0] != 0xFF || got[1] != 0x7F {
		t.Fatalf("expected 0x7FFF little-endian, got % X", got)
	}
}

func TestDecode_Misaligned(t *testing.T) {
	if _, err := Decode([]byte{0x01}); err == nil {
		t.Fatal("expected error for odd-length input")
	}
}

func TestBase64RoundTrip(t *testing.T) {
	chunk := EncodeBase64([]float32{0, 0.25, -0.25, 1, -1})
	if _, err := base64.StdEncoding.DecodeString(chunk); err != nil {
		t.Fatalf("chunk is not valid base64: %v", err)
	}
	raw, err := DecodeBase64(chunk)
	if err != nil {
		t.Fatalf("DecodeBase64 failed: %v", err)
	}
	if len(raw) != 10 {
		t.Fatalf("expected 10 bytes, got %d", len(raw))
	}
}

func TestDecodeBase64_Invalid(t *testing.T) {
	if _, err := DecodeBase64("not base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

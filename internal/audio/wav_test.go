package audio

import (
	"testing"
)

func TestEncodeDecodeWAV(t *testing.T) {
	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(i % 2000)
	}

	data, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	if len(data) != 44+len(samples)*2 {
		t.Errorf("expected %d bytes, got %d", 44+len(samples)*2, len(data))
	}

	decoded, rate, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if rate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", rate)
	}

	if len(decoded) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(decoded))
	}

	for i := range samples {
		if decoded[i] != samples[i] {
			t.Fatalf("sample %d mismatch: expected %d, got %d", i, samples[i], decoded[i])
		}
	}
}

func TestEncodeWAVEmpty(t *testing.T) {
	if _, err := EncodeWAV(nil, 16000); err == nil {
		t.Error("expected error for empty samples")
	}
}

func TestEncodeWAVInvalidRate(t *testing.T) {
	if _, err := EncodeWAV([]int16{1, 2, 3}, 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestDecodeWAVTruncated(t *testing.T) {
	if _, _, err := DecodeWAV([]byte("RIFF")); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	samples := []int16{0, 16384, -16384, 32767, -32768}
	floats := Normalize(samples)

	if floats[0] != 0 {
		t.Errorf("expected 0, got %f", floats[0])
	}
	if floats[1] != 0.5 {
		t.Errorf("expected 0.5, got %f", floats[1])
	}
	if floats[2] != -0.5 {
		t.Errorf("expected -0.5, got %f", floats[2])
	}
	if floats[4] != -1 {
		t.Errorf("expected -1, got %f", floats[4])
	}
}

func TestSamplesBytesRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345}
	data := SamplesToBytes(samples)
	back := BytesToSamples(data)

	if len(back) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(back))
	}
	for i := range samples {
		if back[i] != samples[i] {
			t.Errorf("sample %d mismatch: expected %d, got %d", i, samples[i], back[i])
		}
	}
}

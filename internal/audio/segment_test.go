package audio

import (
	"testing"
)

func TestSegmentAccumulation(t *testing.T) {
	seg := NewSegment(16000, 1024)

	if !seg.Empty() {
		t.Error("new segment should be empty")
	}
	if seg.Duration() != 0 {
		t.Errorf("expected zero duration, got %f", seg.Duration())
	}

	frame := make([]int16, 1024)
	for i := 0; i < 16; i++ {
		seg.Append(frame)
	}

	if seg.Frames() != 16 {
		t.Errorf("expected 16 frames, got %d", seg.Frames())
	}
	if len(seg.Samples()) != 16*1024 {
		t.Errorf("expected %d samples, got %d", 16*1024, len(seg.Samples()))
	}

	// 16 * 1024 / 16000 = 1.024 seconds
	want := 1.024
	if got := seg.Duration(); got != want {
		t.Errorf("expected duration %f, got %f", want, got)
	}
}

func TestSegmentSealRejectsAppend(t *testing.T) {
	seg := NewSegment(16000, 1024)
	seg.Append(make([]int16, 1024))
	seg.Seal()

	if !seg.Sealed() {
		t.Error("segment should report sealed")
	}

	seg.Append(make([]int16, 1024))
	if seg.Frames() != 1 {
		t.Errorf("append after seal should be ignored, got %d frames", seg.Frames())
	}
}

func TestSegmentFloatSamples(t *testing.T) {
	seg := NewSegment(16000, 4)
	seg.Append([]int16{0, 16384, -32768, 32767})

	floats := seg.FloatSamples()
	if len(floats) != 4 {
		t.Fatalf("expected 4 floats, got %d", len(floats))
	}
	if floats[1] != 0.5 {
		t.Errorf("expected 0.5, got %f", floats[1])
	}
	if floats[2] != -1 {
		t.Errorf("expected -1, got %f", floats[2])
	}
}

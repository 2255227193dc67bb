package transcript

import (
	"errors"
	"testing"

	"videoquery/core"
)

func validTranscript() core.Transcript {
	return core.Transcript{
		ID: "abc",
		Segments: []core.Segment{
			{ID: "0", Start: 0, End: 5, Text: "hello world"},
			{ID: "1", Start: 5, End: 9, Text: "goodbye now"},
		},
	}
}

func TestPutAndGet(t *testing.T) {
	s := NewStore()
	if err := s.Put(validTranscript()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	segs, err := s.Segments("abc")
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].ID != "0" || segs[1].ID != "1" {
		t.Errorf("segments out of order: %v", segs)
	}
}

func TestGetUnknownTranscript(t *testing.T) {
	s := NewStore()
	if _, err := s.Segments("missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPutValidation(t *testing.T) {
	tests := []struct {
		name string
		t    core.Transcript
	}{
		{"empty id", core.Transcript{Segments: []core.Segment{{ID: "0", Start: 0, End: 1, Text: "x"}}}},
		{"no segments", core.Transcript{ID: "t"}},
		{"degenerate segment", core.Transcript{ID: "t", Segments: []core.Segment{{ID: "0", Start: 5, End: 5, Text: "x"}}}},
		{"empty text", core.Transcript{ID: "t", Segments: []core.Segment{{ID: "0", Start: 0, End: 1, Text: "  "}}}},
		{"out of order", core.Transcript{ID: "t", Segments: []core.Segment{
			{ID: "0", Start: 5, End: 9, Text: "b"},
			{ID: "1", Start: 0, End: 5, Text: "a"},
		}}},
		{"duplicate segment id", core.Transcript{ID: "t", Segments: []core.Segment{
			{ID: "0", Start: 0, End: 5, Text: "a"},
			{ID: "0", Start: 5, End: 9, Text: "b"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			if err := s.Put(tt.t); !errors.Is(err, core.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestFullText(t *testing.T) {
	s := NewStore()
	if err := s.Put(validTranscript()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	text, err := s.FullText("abc")
	if err != nil {
		t.Fatalf("FullText failed: %v", err)
	}
	if text != "hello world goodbye now" {
		t.Errorf("joined text = %q", text)
	}

	// A pre-concatenated text supplied at ingest wins over joining.
	tr := validTranscript()
	tr.ID = "pre"
	tr.Text = "hello world, goodbye now."
	if err := s.Put(tr); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	text, err = s.FullText("pre")
	if err != nil {
		t.Fatalf("FullText failed: %v", err)
	}
	if text != "hello world, goodbye now." {
		t.Errorf("text = %q", text)
	}

	if _, err := s.FullText("missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	s := NewStore()
	if err := s.Put(validTranscript()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	s.Remove("abc")
	if s.Has("abc") {
		t.Error("transcript still present after Remove")
	}
	// Removing again is a no-op.
	s.Remove("abc")
}

func TestDeriveIDStable(t *testing.T) {
	a := DeriveID("/data/talk.wav")
	b := DeriveID("/data/talk.wav")
	if a != b {
		t.Errorf("DeriveID not stable: %s vs %s", a, b)
	}
	if a == DeriveID("/data/other.wav") {
		t.Error("distinct paths produced the same ID")
	}
}

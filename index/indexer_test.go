package index

import (
	"context"
	"errors"
	"testing"

	"videoquery/core"
	"videoquery/transcript"
	"videoquery/vector"
)

// stubProvider embeds every text as a unit vector on a per-text axis, so all
// distinct texts are orthogonal.
type stubProvider struct {
	axes map[string]int
}

func (p *stubProvider) Model() string { return "stub" }

func (p *stubProvider) Dimensions() int { return 8 }

func (p *stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.axes == nil {
		p.axes = map[string]int{}
	}
	axis, ok := p.axes[text]
	if !ok {
		axis = len(p.axes) % 8
		p.axes[text] = axis
	}
	v := make([]float32, 8)
	v[axis] = 1
	return v, nil
}

func (p *stubProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func sampleTranscript() core.Transcript {
	return core.Transcript{
		ID: "abc",
		Segments: []core.Segment{
			{ID: "0", Start: 0, End: 5, Text: "hello world"},
			{ID: "1", Start: 5, End: 9, Text: "goodbye now"},
		},
	}
}

func TestIndexTranscript(t *testing.T) {
	ctx := context.Background()
	transcripts := transcript.NewStore()
	store := vector.NewMemory()
	ix := NewIndexer(&stubProvider{}, store, transcripts)

	n, err := ix.IndexTranscript(ctx, sampleTranscript())
	if err != nil {
		t.Fatalf("IndexTranscript failed: %v", err)
	}
	if n != 2 {
		t.Errorf("indexed %d segments, want 2", n)
	}
	if !transcripts.Has("abc") {
		t.Error("transcript not stored")
	}
	if count, _ := store.Count(ctx, "abc"); count != 2 {
		t.Errorf("vector partition holds %d records, want 2", count)
	}
}

func TestReindexIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := vector.NewMemory()
	ix := NewIndexer(&stubProvider{}, store, transcript.NewStore())

	if _, err := ix.IndexTranscript(ctx, sampleTranscript()); err != nil {
		t.Fatalf("first index failed: %v", err)
	}
	if _, err := ix.IndexTranscript(ctx, sampleTranscript()); err != nil {
		t.Fatalf("re-index failed: %v", err)
	}
	if count, _ := store.Count(ctx, "abc"); count != 2 {
		t.Errorf("re-index duplicated records: %d", count)
	}
}

func TestIndexRejectsInvalidTranscript(t *testing.T) {
	ix := NewIndexer(&stubProvider{}, vector.NewMemory(), transcript.NewStore())
	bad := core.Transcript{ID: "bad", Segments: []core.Segment{{ID: "0", Start: 5, End: 2, Text: "x"}}}
	if _, err := ix.IndexTranscript(context.Background(), bad); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRemoveTranscriptDeletesVectors(t *testing.T) {
	ctx := context.Background()
	transcripts := transcript.NewStore()
	store := vector.NewMemory()
	ix := NewIndexer(&stubProvider{}, store, transcripts)

	if _, err := ix.IndexTranscript(ctx, sampleTranscript()); err != nil {
		t.Fatalf("index failed: %v", err)
	}
	n, err := ix.RemoveTranscript(ctx, "abc")
	if err != nil {
		t.Fatalf("RemoveTranscript failed: %v", err)
	}
	if n != 2 {
		t.Errorf("removed %d records, want 2", n)
	}
	if transcripts.Has("abc") {
		t.Error("transcript survived removal")
	}
	if count, _ := store.Count(ctx, "abc"); count != 0 {
		t.Errorf("orphaned vectors left behind: %d", count)
	}
}

// narrowProvider claims a wider dimension than it produces.
type narrowProvider struct{ stubProvider }

func (p *narrowProvider) Dimensions() int { return 16 }

func TestIndexRejectsDimensionMismatch(t *testing.T) {
	ix := NewIndexer(&narrowProvider{}, vector.NewMemory(), transcript.NewStore())
	_, err := ix.IndexTranscript(context.Background(), sampleTranscript())
	if !errors.Is(err, core.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestRemoveUnknownTranscript(t *testing.T) {
	ix := NewIndexer(&stubProvider{}, vector.NewMemory(), transcript.NewStore())
	if _, err := ix.RemoveTranscript(context.Background(), "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

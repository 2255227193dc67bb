// Package transcript holds ingested transcripts and their ordered segments.
package transcript

import (
	"fmt"
	"strings"
	"sync"

	"lukechampine.com/blake3"

	"videoquery/core"
)

// Store keeps transcripts in memory for the process lifetime, keyed by
// transcript ID. Transcripts are immutable once stored.
type Store struct {
	mu          sync.RWMutex
	transcripts map[string]core.Transcript
}

func NewStore() *Store {
	return &Store{transcripts: make(map[string]core.Transcript)}
}

// Put validates and stores a transcript. Storing the same ID again replaces
// the previous transcript wholesale; partial updates are not supported.
func (s *Store) Put(t core.Transcript) error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: transcript id required", core.ErrValidation)
	}
	if len(t.Segments) == 0 {
		return fmt.Errorf("%w: transcript %s has no segments", core.ErrValidation, t.ID)
	}
	if err := validateSegments(t.Segments); err != nil {
		return err
	}

	// Keep our own copy so callers cannot mutate stored segments.
	cp := t
	cp.Segments = make([]core.Segment, len(t.Segments))
	copy(cp.Segments, t.Segments)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[t.ID] = cp
	return nil
}

// Get returns the transcript for id.
func (s *Store) Get(id string) (core.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transcripts[id]
	if !ok {
		return core.Transcript{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return t, nil
}

// Segments returns the ordered segments of a transcript, failing with
// ErrNotFound if the transcript has never been indexed.
func (s *Store) Segments(id string) ([]core.Segment, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	out := make([]core.Segment, len(t.Segments))
	copy(out, t.Segments)
	return out, nil
}

// FullText returns the transcript's complete text, joining segment texts in
// order when no pre-concatenated text was supplied at ingest.
func (s *Store) FullText(id string) (string, error) {
	t, err := s.Get(id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(t.Text) != "" {
		return t.Text, nil
	}
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " "), nil
}

// Has reports whether a transcript is stored.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.transcripts[id]
	return ok
}

// Remove discards a transcript. Removing an unknown ID is not an error.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transcripts, id)
}

func validateSegments(segs []core.Segment) error {
	seen := make(map[string]struct{}, len(segs))
	prevStart := -1.0
	for _, seg := range segs {
		if strings.TrimSpace(seg.ID) == "" {
			return fmt.Errorf("%w: segment id required", core.ErrValidation)
		}
		if _, dup := seen[seg.ID]; dup {
			return fmt.Errorf("%w: duplicate segment id %s", core.ErrValidation, seg.ID)
		}
		seen[seg.ID] = struct{}{}
		if strings.TrimSpace(seg.Text) == "" {
			return fmt.Errorf("%w: segment %s has empty text", core.ErrValidation, seg.ID)
		}
		if seg.End <= seg.Start {
			return fmt.Errorf("%w: segment %s has end <= start", core.ErrValidation, seg.ID)
		}
		if seg.Start < prevStart {
			return fmt.Errorf("%w: segments out of order at %s", core.ErrValidation, seg.ID)
		}
		prevStart = seg.Start
	}
	return nil
}

// DeriveID computes a stable transcript ID from the audio artifact reference
// for callers that do not assign their own IDs.
func DeriveID(audioPath string) string {
	sum := blake3.Sum256([]byte(audioPath))
	return fmt.Sprintf("%x", sum[:16])
}

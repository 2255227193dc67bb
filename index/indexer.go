// Package index turns transcript segments into embedding records and keeps
// the vector partition in step with the segment store.
package index

import (
	"context"
	"fmt"
	"log"
	"sync"

	"videoquery/core"
	"videoquery/embed"
	"videoquery/transcript"
	"videoquery/vector"
)

// Indexer embeds a transcript's segments and upserts them into the vector
// store partition keyed by transcript ID.
type Indexer struct {
	provider    embed.Provider
	store       vector.Store
	transcripts *transcript.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-transcript ingestion guard
}

func NewIndexer(provider embed.Provider, store vector.Store, transcripts *transcript.Store) *Indexer {
	return &Indexer{
		provider:    provider,
		store:       store,
		transcripts: transcripts,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (ix *Indexer) lockFor(transcriptID string) *sync.Mutex {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	l, ok := ix.locks[transcriptID]
	if !ok {
		l = &sync.Mutex{}
		ix.locks[transcriptID] = l
	}
	return l
}

// IndexTranscript validates, stores and embeds a transcript. The operation
// is idempotent per segment: re-indexing overwrites vectors in place.
// Concurrent indexing of the same transcript is serialized; different
// transcripts index independently.
func (ix *Indexer) IndexTranscript(ctx context.Context, t core.Transcript) (int, error) {
	l := ix.lockFor(t.ID)
	l.Lock()
	defer l.Unlock()

	if err := ix.transcripts.Put(t); err != nil {
		return 0, err
	}

	texts := make([]string, len(t.Segments))
	for i, seg := range t.Segments {
		texts[i] = seg.Text
	}
	vecs, err := ix.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed transcript %s: %w", t.ID, err)
	}
	for _, v := range vecs {
		if len(v) != ix.provider.Dimensions() {
			return 0, fmt.Errorf("%w: embedding width %d does not match configured dimension %d",
				core.ErrBackendUnavailable, len(v), ix.provider.Dimensions())
		}
	}

	records := make([]vector.Record, len(t.Segments))
	for i, seg := range t.Segments {
		records[i] = vector.Record{
			SegmentID: seg.ID,
			Start:     seg.Start,
			End:       seg.End,
			Text:      seg.Text,
			Vector:    vecs[i],
		}
	}

	n, err := ix.store.Upsert(ctx, t.ID, records)
	if err != nil {
		return n, fmt.Errorf("upsert transcript %s: %w", t.ID, err)
	}
	log.Printf("indexed transcript %s: %d segments (model %s)", t.ID, n, ix.provider.Model())
	return n, nil
}

// RemoveTranscript discards a transcript and its vector partition, so no
// orphaned embedding records outlive their segments.
func (ix *Indexer) RemoveTranscript(ctx context.Context, transcriptID string) (int, error) {
	l := ix.lockFor(transcriptID)
	l.Lock()
	defer l.Unlock()

	if !ix.transcripts.Has(transcriptID) {
		return 0, fmt.Errorf("%w: %s", core.ErrNotFound, transcriptID)
	}
	n, err := ix.store.Delete(ctx, transcriptID)
	if err != nil {
		return 0, fmt.Errorf("delete vectors for %s: %w", transcriptID, err)
	}
	ix.transcripts.Remove(transcriptID)
	log.Printf("removed transcript %s: %d vector records deleted", transcriptID, n)
	return n, nil
}

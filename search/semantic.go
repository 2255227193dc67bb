package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"videoquery/core"
)

// Semantic embeds the query with the index-time model and retrieves the topK
// nearest segments by cosine similarity. Scores are normalized to [0,100];
// negative similarity clamps to 0. Ties resolve by ascending start time.
func (e *Engine) Semantic(ctx context.Context, transcriptID, query string, topK int) ([]core.SegmentResult, error) {
	if !e.transcripts.Has(transcriptID) {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, transcriptID)
	}

	qv, err := e.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := e.store.Query(ctx, transcriptID, qv, topK)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Start < hits[j].Start
	})

	results := make([]core.SegmentResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, core.SegmentResult{
			SegmentID:      h.SegmentID,
			TranscriptID:   transcriptID,
			Start:          h.Start,
			End:            h.End,
			Text:           h.Text,
			RelevanceScore: core.Score(normalizeScore(h.Similarity)),
		})
	}
	return results, nil
}

// normalizeScore maps cosine similarity to a [0,100] relevance score.
func normalizeScore(similarity float64) float64 {
	s := math.Round(100 * math.Max(0, similarity))
	if s > 100 {
		s = 100
	}
	return s
}

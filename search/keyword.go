package search

import (
	"context"
	"sort"

	"videoquery/core"
)

// Keyword ranks a transcript's segments by how many distinct query tokens
// each one contains. Matching is case-insensitive; segments with no matching
// token are dropped; there is no comparable numeric score, so relevance is
// left nil. An unindexed transcript fails with ErrNotFound; a query that
// matches nothing returns an empty list.
func (e *Engine) Keyword(ctx context.Context, transcriptID, query string, topK int) ([]core.SegmentResult, error) {
	segments, err := e.transcripts.Segments(transcriptID)
	if err != nil {
		return nil, err
	}

	queryTokens := dedupe(tokenize(query))
	segTokens := tokenize
	if len(queryTokens) == 0 {
		// The query was nothing but stopwords; match them literally rather
		// than returning nothing for a query the segments plainly contain.
		queryTokens = dedupe(tokenizeAll(query))
		segTokens = tokenizeAll
	}

	type match struct {
		seg   core.Segment
		count int
	}
	matches := make([]match, 0, len(segments))
	for _, seg := range segments {
		set := tokenSetOf(segTokens(seg.Text))
		count := 0
		for _, tok := range queryTokens {
			if _, ok := set[tok]; ok {
				count++
			}
		}
		if count > 0 {
			matches = append(matches, match{seg: seg, count: count})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].count != matches[j].count {
			return matches[i].count > matches[j].count
		}
		return matches[i].seg.Start < matches[j].seg.Start
	})
	if topK < len(matches) {
		matches = matches[:topK]
	}

	results := make([]core.SegmentResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, core.SegmentResult{
			SegmentID:    m.seg.ID,
			TranscriptID: transcriptID,
			Start:        m.seg.Start,
			End:          m.seg.End,
			Text:         m.seg.Text,
		})
	}
	return results, nil
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

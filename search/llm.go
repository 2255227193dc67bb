package search

import (
	"context"
	"fmt"
	"time"

	"videoquery/core"
	"videoquery/llm"
)

// GenerateTimeout bounds a single generation call. Wiring overrides it from
// configuration at startup.
var GenerateTimeout = 60 * time.Second

// Synthesize answers a question with the active generation backend, grounded
// in semantic retrieval. It fails with ErrNoActiveModel when no backend is
// selected, and a generation failure fails the whole request: semantic-only
// results are never returned as a silent fallback.
func (e *Engine) Synthesize(ctx context.Context, transcriptID, question string, topK int) (*core.SynthesizedAnswer, []core.SegmentResult, error) {
	gen, modelID, err := e.registry.Active()
	if err != nil {
		return nil, nil, err
	}

	results, err := e.Semantic(ctx, transcriptID, question, topK)
	if err != nil {
		return nil, nil, err
	}
	if len(results) == 0 {
		// Nothing to ground an answer in; skip the generation call.
		return &core.SynthesizedAnswer{
			Summary:      "No relevant information found in the transcript.",
			NotAddressed: true,
			ModelID:      modelID,
		}, results, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, GenerateTimeout)
	defer cancel()
	answer, err := llm.Synthesize(genCtx, gen, modelID, question, results)
	if err != nil {
		return nil, nil, fmt.Errorf("synthesize answer: %w", err)
	}
	return &answer, results, nil
}

package search

import (
	"context"
	"fmt"
	"strings"

	"videoquery/core"
	"videoquery/llm"
)

// Summarize produces a whole-transcript summary with the active generation
// backend, working from the full concatenated text rather than retrieved
// segments. It returns the summary and the model that produced it.
func (e *Engine) Summarize(ctx context.Context, transcriptID string) (string, string, error) {
	if strings.TrimSpace(transcriptID) == "" {
		return "", "", fmt.Errorf("%w: transcript_id required", core.ErrValidation)
	}

	text, err := e.transcripts.FullText(transcriptID)
	if err != nil {
		return "", "", err
	}

	gen, modelID, err := e.registry.Active()
	if err != nil {
		return "", "", err
	}

	genCtx, cancel := context.WithTimeout(ctx, GenerateTimeout)
	defer cancel()
	summary, err := llm.GenerateSummary(genCtx, gen, text)
	if err != nil {
		return "", "", fmt.Errorf("summarize transcript %s: %w", transcriptID, err)
	}
	return summary, modelID, nil
}

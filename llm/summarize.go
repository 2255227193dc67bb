package llm

import (
	"context"
	"fmt"
	"strings"
)

const summaryPromptTemplate = `You are summarizing the complete transcript of a video.
Write a concise summary of the transcript below. Cover the main topics in the
order they appear and keep the summary to a single short paragraph.

Transcript:
%s

Summary:`

// GenerateSummary produces a whole-transcript summary with the given backend.
// Unlike question answering there is no completeness protocol: the full text
// is the context, so the reply is taken as-is.
func GenerateSummary(ctx context.Context, gen Generator, text string) (string, error) {
	out, err := gen.Generate(ctx, fmt.Sprintf(summaryPromptTemplate, text))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

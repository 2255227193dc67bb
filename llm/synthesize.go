package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"videoquery/core"
)

// The backend is instructed to report completeness with one of these
// markers; "NOT FOUND" is the sentinel for an unanswerable question.
const promptTemplate = `You are analyzing a video transcript to answer a question.
Based on the transcript segments below, provide a comprehensive answer.

Transcript segments:
%s

Question: %s

You MUST format your response EXACTLY as follows:

SUMMARY:
[Write 2-3 sentences summarizing the answer]

COMPLETENESS:
[State one of: "COMPLETE" if the transcript fully answers the question, "PARTIAL" if only some aspects are covered, or "NOT FOUND" if the transcript doesn't contain relevant information]

Answer:`

var (
	summaryRe      = regexp.MustCompile(`(?is)SUMMARY:\s*\n(.*?)(?:COMPLETENESS:|$)`)
	completenessRe = regexp.MustCompile(`(?is)COMPLETENESS:\s*\n(.*?)(?:\n|$)`)
)

// BuildPrompt assembles the grounded context, tagging each segment with its
// time range so answers stay traceable to the source.
func BuildPrompt(question string, segments []core.SegmentResult) string {
	var ctx strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&ctx, "[%s - %s] %s\n\n", formatTime(seg.Start), formatTime(seg.End), seg.Text)
	}
	return fmt.Sprintf(promptTemplate, ctx.String(), question)
}

// ParseAnswer classifies a backend response. A COMPLETENESS of NOT FOUND
// means the retrieved context does not address the question.
func ParseAnswer(response, question, modelID string) core.SynthesizedAnswer {
	response = strings.TrimSpace(response)

	var summary string
	if m := summaryRe.FindStringSubmatch(response); m != nil {
		summary = strings.Join(strings.Fields(m[1]), " ")
	}

	notAddressed := false
	if m := completenessRe.FindStringSubmatch(response); m != nil {
		c := strings.ToUpper(strings.TrimSpace(m[1]))
		notAddressed = strings.Contains(c, "NOT FOUND") || strings.Contains(c, "NOT_FOUND")
	}

	if summary == "" {
		// The backend ignored the format; salvage the first paragraph.
		first := strings.TrimSpace(strings.SplitN(response, "\n\n", 2)[0])
		if first != "" && !strings.HasPrefix(first, "SUMMARY:") && !strings.HasPrefix(first, "COMPLETENESS:") {
			summary = first
		} else {
			summary = fmt.Sprintf("Analysis of the video transcript regarding: %s", question)
		}
	}

	return core.SynthesizedAnswer{
		Summary:      summary,
		NotAddressed: notAddressed,
		ModelID:      modelID,
	}
}

// Synthesize runs a generation call against gen and classifies the result.
func Synthesize(ctx context.Context, gen Generator, modelID, question string, segments []core.SegmentResult) (core.SynthesizedAnswer, error) {
	out, err := gen.Generate(ctx, BuildPrompt(question, segments))
	if err != nil {
		return core.SynthesizedAnswer{}, err
	}
	return ParseAnswer(out, question, modelID), nil
}

func formatTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	m := int(sec) / 60
	s := int(sec) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

package core

// Segment is a timestamped span of transcript text, the atomic retrievable
// unit. IDs are unique within their transcript only.
type Segment struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the output of the external speech-to-text pipeline. It is
// immutable once ingested.
type Transcript struct {
	ID        string    `json:"id"`
	Language  string    `json:"language,omitempty"`
	Text      string    `json:"text,omitempty"`
	AudioPath string    `json:"audio_path,omitempty"`
	Segments  []Segment `json:"segments"`
}

// SegmentResult is the query-time projection of a segment. RelevanceScore is
// nil for keyword matches, where no comparable numeric score exists, and a
// value in [0,100] for semantic and llm results.
type SegmentResult struct {
	SegmentID      string   `json:"segment_id"`
	TranscriptID   string   `json:"transcript_id"`
	Start          float64  `json:"start_time"`
	End            float64  `json:"end_time"`
	Text           string   `json:"text"`
	RelevanceScore *float64 `json:"relevance_score"`
}

// SynthesizedAnswer is produced by the llm search type only.
type SynthesizedAnswer struct {
	Summary      string `json:"summary"`
	NotAddressed bool   `json:"not_addressed"`
	ModelID      string `json:"model_id"`
}

// SearchType selects the query strategy.
type SearchType string

const (
	SearchKeyword  SearchType = "keyword"
	SearchSemantic SearchType = "semantic"
	SearchLLM      SearchType = "llm"
)

// DefaultTopK bounds result lists when the caller does not specify top_k.
const DefaultTopK = 5

// Score returns a pointer for use as a SegmentResult relevance score.
func Score(v float64) *float64 { return &v }

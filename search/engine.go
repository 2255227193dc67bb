// Package search answers questions about a transcript through three
// escalating strategies: keyword match, vector similarity, and LLM synthesis
// grounded in retrieved segments.
package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	"videoquery/core"
	"videoquery/embed"
	"videoquery/llm"
	"videoquery/transcript"
	"videoquery/vector"
)

// Request is the query boundary contract.
type Request struct {
	Question     string          `json:"question"`
	TranscriptID string          `json:"transcript_id"`
	TopK         int             `json:"top_k"`
	SearchType   core.SearchType `json:"search_type"`
}

// Response carries the ranked results. Answer is populated for llm searches
// only and omitted from JSON otherwise.
type Response struct {
	Question     string                  `json:"question"`
	TranscriptID string                  `json:"transcript_id"`
	SearchType   core.SearchType         `json:"search_type"`
	Results      []core.SegmentResult    `json:"results"`
	Answer       *core.SynthesizedAnswer `json:"answer,omitempty"`
}

// Engine dispatches a request to its strategy.
type Engine struct {
	transcripts *transcript.Store
	provider    embed.Provider
	store       vector.Store
	registry    *llm.Registry
}

func NewEngine(transcripts *transcript.Store, provider embed.Provider, store vector.Store, registry *llm.Registry) *Engine {
	return &Engine{
		transcripts: transcripts,
		provider:    provider,
		store:       store,
		registry:    registry,
	}
}

// Query validates the request and runs the selected strategy.
func (e *Engine) Query(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question required", core.ErrValidation)
	}
	if strings.TrimSpace(req.TranscriptID) == "" {
		return nil, fmt.Errorf("%w: transcript_id required", core.ErrValidation)
	}
	if req.TopK <= 0 {
		req.TopK = core.DefaultTopK
	}
	if req.SearchType == "" {
		req.SearchType = core.SearchKeyword
	}

	log.Printf("query transcript %s: %s search, top_k=%d", req.TranscriptID, req.SearchType, req.TopK)

	resp := &Response{
		Question:     req.Question,
		TranscriptID: req.TranscriptID,
		SearchType:   req.SearchType,
	}

	var err error
	switch req.SearchType {
	case core.SearchKeyword:
		resp.Results, err = e.Keyword(ctx, req.TranscriptID, req.Question, req.TopK)
	case core.SearchSemantic:
		resp.Results, err = e.Semantic(ctx, req.TranscriptID, req.Question, req.TopK)
	case core.SearchLLM:
		resp.Answer, resp.Results, err = e.Synthesize(ctx, req.TranscriptID, req.Question, req.TopK)
	default:
		return nil, fmt.Errorf("%w: unsupported search type %q", core.ErrValidation, req.SearchType)
	}
	if err != nil {
		return nil, err
	}
	if resp.Results == nil {
		resp.Results = []core.SegmentResult{}
	}
	return resp, nil
}

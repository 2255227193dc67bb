// Package server exposes the query engine over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"videoquery/core"
	"videoquery/index"
	"videoquery/llm"
	"videoquery/search"
	"videoquery/transcript"
)

// Server wires the HTTP boundary to the engine, indexer and registry.
type Server struct {
	engine   *search.Engine
	indexer  *index.Indexer
	registry *llm.Registry
}

func New(engine *search.Engine, indexer *index.Indexer, registry *llm.Registry) *Server {
	return &Server{engine: engine, indexer: indexer, registry: registry}
}

// Routes registers all handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/summarize", s.handleSummarize)
	mux.HandleFunc("/transcripts", s.handleTranscripts)
	mux.HandleFunc("/llms", s.handleListModels)
	mux.HandleFunc("/llms/select", s.handleSelectModel)
	mux.HandleFunc("/llms/current", s.handleCurrentModel)
	mux.HandleFunc("/health", s.handleHealth)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req search.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	resp, err := s.engine.Query(r.Context(), req)
	if err != nil {
		core.WriteError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, queryResponse(resp))
}

// queryResponse flattens the llm-only fields into the wire shape: summary,
// not_addressed and model_id appear at the top level for search_type=llm.
func queryResponse(resp *search.Response) map[string]interface{} {
	out := map[string]interface{}{
		"question":      resp.Question,
		"transcript_id": resp.TranscriptID,
		"search_type":   resp.SearchType,
		"results":       resp.Results,
	}
	if resp.Answer != nil {
		out["summary"] = resp.Answer.Summary
		out["not_addressed"] = resp.Answer.NotAddressed
		out["model_id"] = resp.Answer.ModelID
	}
	return out
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req struct {
		TranscriptID string `json:"transcript_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	summary, modelID, err := s.engine.Summarize(r.Context(), req.TranscriptID)
	if err != nil {
		core.WriteError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transcript_id": req.TranscriptID,
		"summary":       summary,
		"model_id":      modelID,
	})
}

func (s *Server) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleIndexTranscript(w, r)
	case http.MethodDelete:
		s.handleRemoveTranscript(w, r)
	default:
		core.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) handleIndexTranscript(w http.ResponseWriter, r *http.Request) {
	var t core.Transcript
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(t.ID) == "" && t.AudioPath != "" {
		t.ID = transcript.DeriveID(t.AudioPath)
	}
	n, err := s.indexer.IndexTranscript(r.Context(), t)
	if err != nil {
		core.WriteError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transcript_id": t.ID,
		"count":         n,
	})
}

func (s *Server) handleRemoveTranscript(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "id required"})
		return
	}
	n, err := s.indexer.RemoveTranscript(r.Context(), id)
	if err != nil {
		core.WriteError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transcript_id": id,
		"deleted":       n,
	})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		core.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	models, activeID := s.registry.List()
	resp := map[string]interface{}{
		"models":  models,
		"has_gpu": s.registry.HasGPU(),
	}
	if activeID != "" {
		resp["active_model_id"] = activeID
	} else {
		resp["active_model_id"] = nil
	}
	core.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelectModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req struct {
		ModelID string `json:"model_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := s.registry.Select(r.Context(), req.ModelID); err != nil {
		core.WriteError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"model_id": req.ModelID,
	})
}

func (s *Server) handleCurrentModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		core.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]interface{}{"llm": s.registry.Current()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	core.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Package llm catalogs generation backends, tracks the single active
// selection, and synthesizes grounded answers from retrieved segments.
package llm

import "context"

// Generator is the capability every generation backend provides.
type Generator interface {
	// Generate produces text for a prompt. Failures surface directly; no
	// retries are attempted at this layer.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Descriptor describes a cataloged backend.
type Descriptor struct {
	ModelID     string `json:"model_id"`
	DisplayName string `json:"display_name"`
	Provider    string `json:"provider"` // "openai" or "ollama"
	Ref         string `json:"ref"`      // provider-side model reference
	RequiresGPU bool   `json:"requires_gpu"`
	Loaded      bool   `json:"loaded"`
}

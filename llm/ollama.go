package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"videoquery/core"
)

// ollamaBackend generates through a local Ollama server.
type ollamaBackend struct {
	baseURL string
	model   string
	client  *http.Client
}

func newOllamaBackend(baseURL, model string) *ollamaBackend {
	return &ollamaBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// warmup verifies the server is reachable and pulls the model into memory by
// issuing an empty generate call. Ollama loads model weights on first use,
// so this is the slow step behind Registry.Select.
func (b *ollamaBackend) warmup(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	body, _ := json.Marshal(ollamaGenerateRequest{Model: b.model, Stream: false})
	resp, err := b.do(ctx, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama warmup for %s: %s", b.model, readErrorBody(resp.Body))
	}
	return nil
}

func (b *ollamaBackend) Generate(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(ollamaGenerateRequest{Model: b.model, Prompt: prompt, Stream: false})
	resp, err := b.do(ctx, body)
	if err != nil {
		return "", fmt.Errorf("%w: ollama generate: %v", core.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: ollama returned status %d: %s",
			core.ErrBackendUnavailable, resp.StatusCode, readErrorBody(resp.Body))
	}
	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode ollama response: %v", core.ErrBackendUnavailable, err)
	}
	return strings.TrimSpace(out.Response), nil
}

func (b *ollamaBackend) do(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return b.client.Do(req)
}

func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return strings.TrimSpace(string(data))
}

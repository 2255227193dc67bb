package llm

import (
	"context"
	"fmt"
	"log"
	"sync"

	"videoquery/config"
	"videoquery/core"
)

type entry struct {
	desc   Descriptor
	loader func(ctx context.Context) (Generator, error)

	loadMu sync.Mutex // serializes first-use loads of this backend
	gen    Generator
}

// Registry is the process-wide catalog of generation backends. The catalog
// is fixed after construction; the active selection is the only mutable
// cell, guarded by mu. Concurrent Select calls are last-writer-wins.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	order    []string
	activeID string
	hasGPU   bool
}

// NewBareRegistry returns a registry with an empty catalog. Callers register
// their own backends; the default catalog comes from NewRegistry.
func NewBareRegistry(hasGPU bool) *Registry {
	return &Registry{entries: make(map[string]*entry), hasGPU: hasGPU}
}

// NewRegistry builds the catalog from configuration. hasGPU is probed once
// by the caller at startup and never re-evaluated.
func NewRegistry(cfg *config.Config, hasGPU bool) *Registry {
	r := NewBareRegistry(hasGPU)

	// Small Ollama-hosted models that run on CPU.
	r.Register(Descriptor{
		ModelID: "tinyllama", DisplayName: "TinyLlama (1.1B)",
		Provider: "ollama", Ref: "tinyllama",
	}, ollamaLoader(cfg, "tinyllama"))
	r.Register(Descriptor{
		ModelID: "qwen-2.5", DisplayName: "Qwen 2.5 (0.5B)",
		Provider: "ollama", Ref: "qwen2.5:0.5b",
	}, ollamaLoader(cfg, "qwen2.5:0.5b"))
	r.Register(Descriptor{
		ModelID: "phi-2", DisplayName: "Phi-2 (2.7B)",
		Provider: "ollama", Ref: "phi",
	}, ollamaLoader(cfg, "phi"))

	// Larger model, GPU hosts only.
	r.Register(Descriptor{
		ModelID: "mistral-7b", DisplayName: "Mistral 7B Instruct",
		Provider: "ollama", Ref: "mistral", RequiresGPU: true,
	}, ollamaLoader(cfg, "mistral"))

	// Hosted chat model, only when API credentials are configured.
	if cfg.HasValidAPI() && cfg.ChatModel != "" {
		r.Register(Descriptor{
			ModelID: "hosted", DisplayName: cfg.ChatModel,
			Provider: "openai", Ref: cfg.ChatModel,
		}, func(ctx context.Context) (Generator, error) {
			return newOpenAIBackend(cfg, cfg.ChatModel)
		})
	}

	return r
}

func ollamaLoader(cfg *config.Config, ref string) func(ctx context.Context) (Generator, error) {
	return func(ctx context.Context) (Generator, error) {
		b := newOllamaBackend(cfg.OllamaURL, ref)
		if err := b.warmup(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
		}
		return b, nil
	}
}

// Register adds a backend to the catalog. The loader runs at most once, on
// first selection. Registration happens at startup, before the registry is
// shared; it is not safe to call concurrently with Select.
func (r *Registry) Register(desc Descriptor, loader func(ctx context.Context) (Generator, error)) {
	if _, exists := r.entries[desc.ModelID]; exists {
		log.Printf("model %s already in registry, skipping", desc.ModelID)
		return
	}
	r.entries[desc.ModelID] = &entry{desc: desc, loader: loader}
	r.order = append(r.order, desc.ModelID)
}

// HasGPU reports the cached host capability.
func (r *Registry) HasGPU() bool { return r.hasGPU }

// List returns the catalog in registration order plus the active selection.
func (r *Registry) List() ([]Descriptor, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].desc)
	}
	return out, r.activeID
}

// Current returns the descriptor of the active backend, or nil if none is
// selected.
func (r *Registry) Current() *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.activeID == "" {
		return nil
	}
	d := r.entries[r.activeID].desc
	return &d
}

// Select validates and activates a backend, lazily initializing its
// resources on first use. Validation failures leave the active selection
// unchanged. Re-selecting the active backend is a no-op success.
func (r *Registry) Select(ctx context.Context, modelID string) error {
	r.mu.RLock()
	e, ok := r.entries[modelID]
	active := r.activeID
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: model %s not in registry", core.ErrNotFound, modelID)
	}
	if e.desc.RequiresGPU && !r.hasGPU {
		return fmt.Errorf("%w: model %s requires a GPU", core.ErrModelIncompatible, modelID)
	}
	if active == modelID {
		return nil
	}

	// The load can be slow (model weights pulled into memory). Serialize it
	// per backend so concurrent first-use requests load once.
	e.loadMu.Lock()
	if e.gen == nil {
		log.Printf("loading model %s (%s/%s)", modelID, e.desc.Provider, e.desc.Ref)
		gen, err := e.loader(ctx)
		if err != nil {
			e.loadMu.Unlock()
			return fmt.Errorf("load model %s: %w", modelID, err)
		}
		e.gen = gen
	}
	e.loadMu.Unlock()

	r.mu.Lock()
	e.desc.Loaded = true
	r.activeID = modelID
	r.mu.Unlock()

	log.Printf("active model set to %s", modelID)
	return nil
}

// Active returns the active backend's generator and model ID, or
// ErrNoActiveModel when nothing is selected.
func (r *Registry) Active() (Generator, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.activeID == "" {
		return nil, "", core.ErrNoActiveModel
	}
	e := r.entries[r.activeID]
	return e.gen, r.activeID, nil
}

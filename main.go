package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"videoquery/config"
	"videoquery/core"
	"videoquery/embed"
	"videoquery/index"
	"videoquery/llm"
	"videoquery/search"
	"videoquery/server"
	"videoquery/transcript"
	"videoquery/vector"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	hasGPU := core.HasGPU()

	ctx := context.Background()
	store, err := vector.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open vector store: %v", err)
	}
	backend := os.Getenv("STORE")
	if backend == "" {
		backend = "memory"
	}
	log.Printf("Vector store initialized: %s", backend)

	provider, err := embed.NewOpenAIProvider(cfg)
	if err != nil {
		log.Fatalf("failed to init embedding provider: %v", err)
	}

	transcripts := transcript.NewStore()
	indexer := index.NewIndexer(provider, store, transcripts)
	registry := llm.NewRegistry(cfg, hasGPU)
	search.GenerateTimeout = cfg.GenerateTimeout()

	if cfg.DefaultModel != "" {
		if err := registry.Select(ctx, cfg.DefaultModel); err != nil {
			log.Printf("Warning: failed to select default model %s: %v", cfg.DefaultModel, err)
		} else {
			log.Printf("Default model selected: %s", cfg.DefaultModel)
		}
	}

	engine := search.NewEngine(transcripts, provider, store, registry)

	mux := http.NewServeMux()
	server.New(engine, indexer, registry).Routes(mux)

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}
	log.Printf("Server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

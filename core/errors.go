package core

import "errors"

// Error taxonomy for the query engine. Callers branch on these with
// errors.Is; lower layers wrap them with context via fmt.Errorf and %w.
var (
	// ErrValidation covers malformed requests: empty question, blank
	// transcript ID, unknown search type. Rejected before any strategy runs.
	ErrValidation = errors.New("invalid request")

	// ErrNotFound means the transcript has never been indexed.
	ErrNotFound = errors.New("transcript not found")

	// ErrNoActiveModel means llm synthesis was requested before a generation
	// backend was selected.
	ErrNoActiveModel = errors.New("no active model selected")

	// ErrModelIncompatible means the backend requires a GPU the host lacks.
	ErrModelIncompatible = errors.New("model incompatible with host")

	// ErrBackendUnavailable means the vector store or generation backend was
	// unreachable or timed out. No retries are attempted.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

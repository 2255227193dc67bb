package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a taxonomy error to an HTTP status and writes it.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrNoActiveModel), errors.Is(err, ErrModelIncompatible):
		status = http.StatusConflict
	case errors.Is(err, ErrBackendUnavailable):
		status = http.StatusBadGateway
	}
	WriteJSON(w, status, map[string]string{"error": err.Error()})
}

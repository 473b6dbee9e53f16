package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rohits-web03/sitedrop/internal/observability"
)

// Payload is the envelope of every API response.
type Payload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSONResponse sends a JSON response with given status, success flag, and payload
func JSONResponse(w http.ResponseWriter, status int, payload Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.Logger().Warn("failed to write response", "status", status, "error", err)
	}
}

// JSONError sends a failed Payload carrying only a message.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSONResponse(w, status, Payload{Success: false, Message: message})
}

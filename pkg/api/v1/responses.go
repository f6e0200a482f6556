package v1

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the body of every non-2xx JSON response. Messages are
// generic on purpose; upstream error detail is logged, never exposed.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already written; nothing more we can do here.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

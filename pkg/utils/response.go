package utils

import (
	"encoding/json"
	"net/http"

	"github.com/safetybuddy/backend/pkg/log"
)

// RespondJSON writes payload as a JSON response.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warnf("failed to encode response: %v", err)
	}
}

// RespondError writes a JSON error body.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

package middleware

import (
	"encoding/json"
	"net/http"
)

// writeEnvelope renders the uniform failure envelope for responses emitted
// before a handler runs.
func writeEnvelope(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}

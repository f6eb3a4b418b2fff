package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iudanet/taskkeeper/pkg/api"
)

// writeJSONError отвечает {"error": message}
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: message})
}

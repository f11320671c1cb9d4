// Package respond writes the JSON bodies shared by every API endpoint.
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with status 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Items wraps a list as {"items": [...]}. A nil slice is written as [].
func Items[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	JSON(w, http.StatusOK, map[string]any{"items": items})
}

// Error writes the failure envelope {"success": false, "error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	ErrorWith(w, status, message, nil)
}

// ErrorWith adds extra fields to the failure envelope.
func ErrorWith(w http.ResponseWriter, status int, message string, extra map[string]any) {
	body := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		body[k] = v
	}
	body["success"] = false
	body["error"] = message
	JSON(w, status, body)
}

package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/hookstudio/internal/jsonx"
)

type errorResponse struct {
	Error string `json:"error"`
}

// reject ends the request with the same JSON error shape the handlers use.
func reject(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = jsonx.MarshalToWriter(w, errorResponse{Error: msg})
}

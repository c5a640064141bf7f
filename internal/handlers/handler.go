package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/keyroom-chat/keyroom/internal/session"
	"github.com/keyroom-chat/keyroom/internal/store"
)

// SessionKeyHeader carries the session key on send, fetch and delete
// requests. Keys never appear in URLs so they stay out of request logs.
const SessionKeyHeader = "X-Session-Key"

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	svc      *session.Service
	store    store.SessionStore
	instance string
}

// NewHandler creates a new Handler with the given service and store.
func NewHandler(svc *session.Service, st store.SessionStore, instance string) *Handler {
	return &Handler{svc: svc, store: st, instance: instance}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// sessionKeyFrom extracts the session key header, or fails the request.
func (h *Handler) sessionKeyFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.Header.Get(SessionKeyHeader)
	if key == "" {
		h.Error(w, http.StatusBadRequest, "missing "+SessionKeyHeader+" header")
		return "", false
	}
	return key, true
}

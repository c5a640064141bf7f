package handlers

import (
	"encoding/json"
	"net/http"
)

// CreateSessionResponse represents the session creation response.
type CreateSessionResponse struct {
	Key string `json:"key"`
}

// JoinSessionRequest represents the join request body.
type JoinSessionRequest struct {
	Key string `json:"key"`
}

// JoinSessionResponse represents the join response.
type JoinSessionResponse struct {
	Success bool `json:"success"`
}

// DeleteSessionResponse represents the delete response.
type DeleteSessionResponse struct {
	Deleted bool `json:"deleted"`
}

// CreateSession handles session generation. The returned key is the only
// credential for the session; the server keeps no other copy of it.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	key, err := h.svc.Generate(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.JSON(w, http.StatusCreated, CreateSessionResponse{Key: key})
}

// JoinSession handles membership checks. Success means a session exists
// for the presented key; repeated failures are not rate limited or locked
// out, the 128-bit key space is the defense.
func (h *Handler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req JoinSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ok, err := h.svc.Validate(r.Context(), req.Key)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "storage error")
		return
	}

	h.JSON(w, http.StatusOK, JoinSessionResponse{Success: ok})
}

// DeleteSession destroys a session and its history. Deleting an unknown
// session is a no-op reported as deleted=false.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	key, ok := h.sessionKeyFrom(w, r)
	if !ok {
		return
	}

	deleted, err := h.svc.Delete(r.Context(), key)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "storage error")
		return
	}

	h.JSON(w, http.StatusOK, DeleteSessionResponse{Deleted: deleted})
}

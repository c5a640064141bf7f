package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/keyroom-chat/keyroom/internal/models"
	"github.com/keyroom-chat/keyroom/internal/store"
)

// PostMessageRequest represents the send request body. An empty message
// is allowed.
type PostMessageRequest struct {
	Message string `json:"message"`
}

// MessagesResponse represents the history returned by send and fetch.
type MessagesResponse struct {
	Messages []models.Message `json:"messages"`
}

// PostMessage appends a message to the session and returns the full
// decrypted history, which the polling client uses to resync its view.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	key, ok := h.sessionKeyFrom(w, r)
	if !ok {
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(req.Message) > 4096 {
		h.Error(w, http.StatusUnprocessableEntity, "message too long (max 4096 bytes)")
		return
	}

	messages, err := h.svc.Send(r.Context(), key, req.Message)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "session not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	h.JSON(w, http.StatusCreated, MessagesResponse{Messages: messages})
}

// GetMessages returns the full decrypted history. An unknown key yields
// an empty list, not an error.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	key, ok := h.sessionKeyFrom(w, r)
	if !ok {
		return
	}

	messages, err := h.svc.Fetch(r.Context(), key)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}

	h.JSON(w, http.StatusOK, MessagesResponse{Messages: messages})
}

// Package session orchestrates the cipher engine and session store into
// the five operations the request layer consumes: generate, validate,
// send, fetch, delete. Messages are decrypted only on the response path
// and never persisted in plaintext.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/keyroom-chat/keyroom/internal/cipher"
	"github.com/keyroom-chat/keyroom/internal/metrics"
	"github.com/keyroom-chat/keyroom/internal/models"
	"github.com/keyroom-chat/keyroom/internal/store"
)

// Service exposes the session operations over any SessionStore backend.
// It owns no state of its own.
type Service struct {
	store  store.SessionStore
	logger zerolog.Logger
}

// NewService creates a session service on top of st.
func NewService(st store.SessionStore, logger zerolog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Generate creates a new empty session and returns its key. The key is
// the only credential for the session and must not be logged.
func (s *Service) Generate(ctx context.Context) (string, error) {
	key, err := s.store.Create(ctx)
	if err != nil {
		return "", err
	}
	metrics.SessionsCreated.Inc()
	return key, nil
}

// Validate reports whether key names a live session. Possession of the key
// is the entire membership check.
func (s *Service) Validate(ctx context.Context, key string) (bool, error) {
	return s.store.Exists(ctx, key)
}

// Send encrypts text under the session key, appends it with a
// server-assigned timestamp, and returns the full decrypted history
// including the new message. Returns store.ErrNotFound when no session
// exists for key.
func (s *Service) Send(ctx context.Context, key, text string) ([]models.Message, error) {
	blob, err := cipher.Encrypt(key, text)
	if err != nil {
		return nil, err
	}

	rec := models.EncryptedRecord{
		Blob:      blob,
		Timestamp: time.Now().Format(models.TimestampLayout),
	}

	log, err := s.store.Append(ctx, key, rec)
	if errors.Is(err, store.ErrCorruptLog) {
		metrics.CorruptLogs.Inc()
		s.logger.Error().Err(err).Msg("session log unparseable, serving empty history")
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, err
	}

	metrics.MessagesSent.Inc()
	return s.decryptAll(key, log), nil
}

// Fetch returns the full decrypted history for key in insertion order. An
// unknown key yields an empty history, not an error.
func (s *Service) Fetch(ctx context.Context, key string) ([]models.Message, error) {
	log, err := s.store.ReadLog(ctx, key)
	if errors.Is(err, store.ErrCorruptLog) {
		metrics.CorruptLogs.Inc()
		s.logger.Error().Err(err).Msg("session log unparseable, serving empty history")
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, err
	}

	return s.decryptAll(key, log), nil
}

// Delete destroys the session and its log. Returns true when a session
// existed. Deletion is permanent; there is no soft-delete.
func (s *Service) Delete(ctx context.Context, key string) (bool, error) {
	deleted, err := s.store.Remove(ctx, key)
	if err != nil {
		return false, err
	}
	if deleted {
		metrics.SessionsDeleted.Inc()
	}
	return deleted, nil
}

// decryptAll decrypts every record in order. A record that fails to
// decrypt is skipped and counted; the rest of the log is still served.
func (s *Service) decryptAll(key string, log models.SessionLog) []models.Message {
	messages := make([]models.Message, 0, len(log.Records))
	for _, rec := range log.Records {
		text, err := cipher.Decrypt(key, rec.Blob)
		if err != nil {
			metrics.DecryptFailures.Inc()
			s.logger.Warn().Err(err).Msg("skipping undecryptable record")
			continue
		}
		messages = append(messages, models.Message{Text: text, Timestamp: rec.Timestamp})
	}
	return messages
}

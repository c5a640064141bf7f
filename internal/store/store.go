package store

import (
	"context"
	"errors"

	"github.com/keyroom-chat/keyroom/internal/models"
)

// ErrNotFound is returned when an operation targets a session key that has
// no persisted log and its absence is meaningful (appends, unlike reads,
// never create or tolerate a missing session).
var ErrNotFound = errors.New("session not found")

// SessionStore persists session logs keyed by session key string.
// FileStore, SQLiteStore, PostgresStore and RedisStore implement this
// interface. Append must be atomic per key: two concurrent appends on the
// same session must both survive in the final log.
type SessionStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Create generates a fresh session key and persists an empty log for
	// it. The log is durably visible before Create returns.
	Create(ctx context.Context) (string, error)

	// Exists reports whether a log is currently persisted for key. This is
	// the sole join-authorization check.
	Exists(ctx context.Context, key string) (bool, error)

	// Append adds one record to the session's log and returns the full
	// updated log in insertion order. Returns ErrNotFound when no log
	// exists for key.
	Append(ctx context.Context, key string, rec models.EncryptedRecord) (models.SessionLog, error)

	// ReadLog returns the full log in insertion order. A missing session
	// yields an empty log, not an error.
	ReadLog(ctx context.Context, key string) (models.SessionLog, error)

	// Remove deletes the session's log. Returns true when a log existed.
	Remove(ctx context.Context, key string) (bool, error)
}

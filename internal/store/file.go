package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/keyroom-chat/keyroom/internal/cipher"
	"github.com/keyroom-chat/keyroom/internal/models"
)

// FileStore persists one JSON log file per session under a configured
// directory. Mutations on one session are serialized behind a per-key
// mutex and every write goes through a temp file plus rename, so readers
// always observe a complete log and concurrent appends never overwrite
// each other.
type FileStore struct {
	dir string

	mu    sync.Mutex // guards locks
	locks map[string]*sync.Mutex
}

// NewFileStore creates a file-backed session store rooted at dir.
// If dir is empty, defaults to "./data/sessions".
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "./data/sessions"
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return &FileStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Close is a no-op; FileStore holds no long-lived handles.
func (s *FileStore) Close() {}

// Ping checks that the storage directory is still reachable.
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

// keyLock returns the mutex serializing mutations for one session key.
// Entries are never removed: a remove-then-recreate of the map entry could
// hand two goroutines different mutexes for the same key.
func (s *FileStore) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lk, ok := s.locks[key]
	if !ok {
		lk = &sync.Mutex{}
		s.locks[key] = lk
	}
	return lk
}

// path maps a session key to its log file. Callers must have validated
// the key shape first; the key string is used verbatim as a file name.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Create generates a fresh session key and persists an empty log for it.
func (s *FileStore) Create(ctx context.Context) (string, error) {
	key, err := cipher.GenerateKey()
	if err != nil {
		return "", err
	}

	lk := s.keyLock(key)
	lk.Lock()
	defer lk.Unlock()

	if err := s.writeLog(key, models.SessionLog{}); err != nil {
		return "", err
	}
	return key, nil
}

// Exists reports whether a log file is persisted for key.
func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	if !cipher.ValidKey(key) {
		return false, nil
	}

	_, err := os.Stat(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Append adds one record to the session's log under the per-key lock and
// returns the full updated log.
func (s *FileStore) Append(ctx context.Context, key string, rec models.EncryptedRecord) (models.SessionLog, error) {
	if !cipher.ValidKey(key) {
		return models.SessionLog{}, ErrNotFound
	}

	lk := s.keyLock(key)
	lk.Lock()
	defer lk.Unlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return models.SessionLog{}, ErrNotFound
	}
	if err != nil {
		return models.SessionLog{}, err
	}

	log, err := DecodeLog(data)
	if err != nil {
		return models.SessionLog{}, err
	}

	log.Records = append(log.Records, rec)

	if err := s.writeLog(key, log); err != nil {
		return models.SessionLog{}, err
	}
	return log, nil
}

// ReadLog returns the session's full log, or an empty log when no session
// exists for key. The rename-based write discipline makes the read safe
// without taking the per-key lock.
func (s *FileStore) ReadLog(ctx context.Context, key string) (models.SessionLog, error) {
	if !cipher.ValidKey(key) {
		return models.SessionLog{}, nil
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return models.SessionLog{}, nil
	}
	if err != nil {
		return models.SessionLog{}, err
	}

	return DecodeLog(data)
}

// Remove deletes the session's log file. Returns true when it existed.
func (s *FileStore) Remove(ctx context.Context, key string) (bool, error) {
	if !cipher.ValidKey(key) {
		return false, nil
	}

	lk := s.keyLock(key)
	lk.Lock()
	defer lk.Unlock()

	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// writeLog persists a log via temp file then rename. Caller holds the
// per-key lock, so the temp name cannot collide with another writer.
func (s *FileStore) writeLog(key string, log models.SessionLog) error {
	data, err := EncodeLog(log)
	if err != nil {
		return fmt.Errorf("encode session log: %w", err)
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

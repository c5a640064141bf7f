package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/keyroom-chat/keyroom/internal/cipher"
	"github.com/keyroom-chat/keyroom/internal/models"
)

// SQLiteStore persists session logs in a SQLite database, one row per
// encrypted record. Appends run in an immediate transaction, which gives
// the read-modify-write atomicity the file backend gets from its per-key
// locks.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/keyroom.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/keyroom.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_key TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_key TEXT NOT NULL REFERENCES sessions(session_key) ON DELETE CASCADE,
		blob TEXT NOT NULL,
		ts TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_session ON records(session_key, id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create generates a fresh session key and inserts its session row.
func (s *SQLiteStore) Create(ctx context.Context) (string, error) {
	key, err := cipher.GenerateKey()
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO sessions (session_key) VALUES (?)`, key)
	if err != nil {
		return "", err
	}
	return key, nil
}

// Exists reports whether a session row is persisted for key.
func (s *SQLiteStore) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE session_key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Append inserts one record and returns the full log, all in one
// transaction.
func (s *SQLiteStore) Append(ctx context.Context, key string, rec models.EncryptedRecord) (models.SessionLog, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.SessionLog{}, err
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE session_key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SessionLog{}, ErrNotFound
	}
	if err != nil {
		return models.SessionLog{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (session_key, blob, ts)
		VALUES (?, ?, ?)
	`, key, rec.Blob, rec.Timestamp)
	if err != nil {
		return models.SessionLog{}, err
	}

	log, err := readRecords(ctx, tx, key)
	if err != nil {
		return models.SessionLog{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.SessionLog{}, err
	}
	return log, nil
}

// ReadLog returns the session's records in insertion order. A missing
// session yields an empty log.
func (s *SQLiteStore) ReadLog(ctx context.Context, key string) (models.SessionLog, error) {
	return readRecords(ctx, s.db, key)
}

// Remove deletes the session row; records cascade.
func (s *SQLiteStore) Remove(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_key = ?`, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func readRecords(ctx context.Context, q querier, key string) (models.SessionLog, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT blob, ts FROM records
		WHERE session_key = ?
		ORDER BY id
	`, key)
	if err != nil {
		return models.SessionLog{}, err
	}
	defer rows.Close()

	var log models.SessionLog
	for rows.Next() {
		var rec models.EncryptedRecord
		if err := rows.Scan(&rec.Blob, &rec.Timestamp); err != nil {
			return models.SessionLog{}, err
		}
		log.Records = append(log.Records, rec)
	}
	return log, rows.Err()
}

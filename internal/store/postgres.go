package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keyroom-chat/keyroom/internal/cipher"
	"github.com/keyroom-chat/keyroom/internal/models"
)

// PostgresStore persists session logs in PostgreSQL, one row per encrypted
// record. The row-per-record layout makes an append a single transactional
// INSERT, so concurrent sends on the same session never overwrite each
// other.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool
// and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}

	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_key TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS records (
		id BIGSERIAL PRIMARY KEY,
		session_key TEXT NOT NULL REFERENCES sessions(session_key) ON DELETE CASCADE,
		blob TEXT NOT NULL,
		ts TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_session ON records(session_key, id);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Create generates a fresh session key and inserts its session row.
func (s *PostgresStore) Create(ctx context.Context) (string, error) {
	key, err := cipher.GenerateKey()
	if err != nil {
		return "", err
	}

	_, err = s.pool.Exec(ctx, `INSERT INTO sessions (session_key) VALUES ($1)`, key)
	if err != nil {
		return "", err
	}
	return key, nil
}

// Exists reports whether a session row is persisted for key.
func (s *PostgresStore) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM sessions WHERE session_key = $1`, key).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Append inserts one record and returns the full log, all in one
// transaction.
func (s *PostgresStore) Append(ctx context.Context, key string, rec models.EncryptedRecord) (models.SessionLog, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.SessionLog{}, err
	}
	defer tx.Rollback(ctx)

	var one int
	err = tx.QueryRow(ctx, `SELECT 1 FROM sessions WHERE session_key = $1`, key).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SessionLog{}, ErrNotFound
	}
	if err != nil {
		return models.SessionLog{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO records (session_key, blob, ts)
		VALUES ($1, $2, $3)
	`, key, rec.Blob, rec.Timestamp)
	if err != nil {
		return models.SessionLog{}, err
	}

	log, err := s.readRecords(ctx, tx, key)
	if err != nil {
		return models.SessionLog{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.SessionLog{}, err
	}
	return log, nil
}

// ReadLog returns the session's records in insertion order. A missing
// session yields an empty log.
func (s *PostgresStore) ReadLog(ctx context.Context, key string) (models.SessionLog, error) {
	return s.readRecords(ctx, s.pool, key)
}

// Remove deletes the session row; records cascade.
func (s *PostgresStore) Remove(ctx context.Context, key string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE session_key = $1`, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// pgQuerier is satisfied by *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *PostgresStore) readRecords(ctx context.Context, q pgQuerier, key string) (models.SessionLog, error) {
	rows, err := q.Query(ctx, `
		SELECT blob, ts FROM records
		WHERE session_key = $1
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

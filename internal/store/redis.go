package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keyroom-chat/keyroom/internal/cipher"
	"github.com/keyroom-chat/keyroom/internal/models"
)

// RedisStore persists session logs in Redis: a marker key per session plus
// a list of JSON records. RPUSH is a native atomic append, so concurrent
// sends on one session serialize inside Redis without any client-side
// locking. An optional TTL makes sessions expire after inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new Redis store. A ttl of zero disables
// expiration.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() {
	s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// sessionKey returns the marker key whose presence defines a live session.
func sessionKey(key string) string {
	return fmt.Sprintf("session:%s", key)
}

// sessionLogKey returns the key holding the session's record list.
func sessionLogKey(key string) string {
	return fmt.Sprintf("session:%s:log", key)
}

// Create generates a fresh session key and sets its marker.
func (s *RedisStore) Create(ctx context.Context) (string, error) {
	key, err := cipher.GenerateKey()
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, sessionKey(key), "1", s.ttl).Err(); err != nil {
		return "", err
	}
	return key, nil
}

// Exists reports whether the session marker is present.
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Append pushes one record onto the session's list and returns the full
// log. The TTL on both keys is refreshed on every append.
func (s *RedisStore) Append(ctx context.Context, key string, rec models.EncryptedRecord) (models.SessionLog, error) {
	ok, err := s.Exists(ctx, key)
	if err != nil {
		return models.SessionLog{}, err
	}
	if !ok {
		return models.SessionLog{}, ErrNotFound
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return models.SessionLog{}, err
	}

	logKey := sessionLogKey(key)

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, logKey, string(data))
	if s.ttl > 0 {
		pipe.Expire(ctx, logKey, s.ttl)
		pipe.Expire(ctx, sessionKey(key), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return models.SessionLog{}, err
	}

	return s.readList(ctx, logKey)
}

// ReadLog returns the session's records in push order. A missing marker
// yields an empty log even if a stale list lingers.
func (s *RedisStore) ReadLog(ctx context.Context, key string) (models.SessionLog, error) {
	ok, err := s.Exists(ctx, key)
	if err != nil {
		return models.SessionLog{}, err
	}
	if !ok {
		return models.SessionLog{}, nil
	}

	return s.readList(ctx, sessionLogKey(key))
}

// Remove deletes the session marker and its record list.
func (s *RedisStore) Remove(ctx context.Context, key string) (bool, error) {
	ok, err := s.Exists(ctx, key)
	if err != nil {
		return false, err
	}

	if err := s.client.Del(ctx, sessionKey(key), sessionLogKey(key)).Err(); err != nil {
		return false, err
	}
	return ok, nil
}

func (s *RedisStore) readList(ctx context.Context, logKey string) (models.SessionLog, error) {
	results, err := s.client.LRange(ctx, logKey, 0, -1).Result()
	if err != nil {
		return models.SessionLog{}, err
	}

	var log models.SessionLog
	for _, data := range results {
		var rec models.EncryptedRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}
		log.Records = append(log.Records, rec)
	}
	return log, nil
}

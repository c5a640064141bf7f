package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), ttl)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestRedisCreateAndExists(t *testing.T) {
	s := newTestRedisStore(t, 0)
	ctx := context.Background()

	key, err := s.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := s.Exists(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("freshly created session should exist")
	}

	ok, _ = s.Exists(ctx, "ffffffffffffffffffffffffffffffff")
	if ok {
		t.Fatal("unused key should not exist")
	}
}

func TestRedisAppendAndReadLog(t *testing.T) {
	s := newTestRedisStore(t, 0)
	ctx := context.Background()

	key, _ := s.Create(ctx)

	log, err := s.ReadLog(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if len(log.Records) != 0 {
		t.Fatalf("expected empty log, got %d records", len(log.Records))
	}

	if _, err := s.Append(ctx, key, rec("a")); err != nil {
		t.Fatal(err)
	}
	log, err = s.Append(ctx, key, rec("b"))
	if err != nil {
		t.Fatal(err)
	}

	if len(log.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(log.Records))
	}
	if log.Records[0].Blob != "a" || log.Records[1].Blob != "b" {
		t.Fatalf("push order not preserved: %+v", log.Records)
	}
}

func TestRedisAppendUnknownKey(t *testing.T) {
	s := newTestRedisStore(t, 0)

	_, err := s.Append(context.Background(), "ffffffffffffffffffffffffffffffff", rec("a"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisRemove(t *testing.T) {
	s := newTestRedisStore(t, 0)
	ctx := context.Background()

	key, _ := s.Create(ctx)
	s.Append(ctx, key, rec("a"))

	deleted, err := s.Remove(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Fatal("expected remove to report true")
	}

	log, err := s.ReadLog(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if len(log.Records) != 0 {
		t.Fatal("removed session should have no residue")
	}

	deleted, _ = s.Remove(ctx, key)
	if deleted {
		t.Fatal("second remove should report false")
	}
}

func TestRedisSessionTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := NewRedisStore(ctx, "redis://"+mr.Addr(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	key, _ := s.Create(ctx)
	s.Append(ctx, key, rec("a"))

	mr.FastForward(2 * time.Minute)

	ok, err := s.Exists(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("session should expire after the TTL")
	}
}

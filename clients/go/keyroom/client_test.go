package keyroom

import (
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/keyroom-chat/keyroom/internal/api"
	"github.com/keyroom-chat/keyroom/internal/handlers"
	"github.com/keyroom-chat/keyroom/internal/session"
	"github.com/keyroom-chat/keyroom/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := session.NewService(st, zerolog.Nop())
	h := handlers.NewHandler(svc, st, "test")

	srv := httptest.NewServer(api.NewRouter(zerolog.Nop(), h))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestClientFlow(t *testing.T) {
	c := newTestClient(t)

	key, err := c.CreateSession()
	if err != nil {
		t.Fatal(err)
	}
	if key == "" {
		t.Fatal("expected a session key")
	}

	ok, err := c.Join(key)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("join with own key should succeed")
	}

	msgs, err := c.Send("hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Text != "hello" {
		t.Fatalf("unexpected history %+v", msgs)
	}

	msgs, err = c.Fetch()
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	deleted, err := c.Delete()
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Fatal("expected delete to report true")
	}
}

func TestClientJoinInvalidKey(t *testing.T) {
	c := newTestClient(t)

	ok, err := c.Join("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("join with unknown key should fail")
	}
	if c.SessionKey != "" {
		t.Fatal("failed join should not set the session key")
	}
}

func TestClientSendWithoutSession(t *testing.T) {
	c := newTestClient(t)

	if _, err := c.Send("hello"); err == nil {
		t.Fatal("send without a session should fail")
	}
}

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/barikoi/barikoi-go/internal/watch"
	"github.com/barikoi/barikoi-go/transport"
)

var (
	_ transport.Cache    = RedisResponseCache{}
	_ watch.SessionCache = RedisSessionCache{}
)

// newTestClient connects to REDIS_TEST_ADDR, skipping the test when unset.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestKeys(t *testing.T) {
	if got := formatSessionKey("abc"); got != "barikoi:watch:session:abc" {
		t.Fatalf("unexpected session key: %s", got)
	}
	if got := formatResponseKey("f00"); got != "barikoi:response:f00" {
		t.Fatalf("unexpected response key: %s", got)
	}
}

func TestRedisSessionCache(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	c := NewRedisSessionCache(client, time.Minute)

	id := "test-" + time.Now().Format("150405.000000")
	session := &watch.Session{ID: id, Destination: watch.Destination{Lat: 23.8, Lon: 90.3, Radius: 50}, Inside: true}
	if err := c.SetSession(ctx, session); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	got, err := c.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Destination != session.Destination || !got.Inside {
		t.Fatalf("unexpected session: %+v", got)
	}
	if err := c.DeleteSession(ctx, id); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := c.GetSession(ctx, id); !errors.Is(err, watch.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRedisResponseCache(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	c := NewRedisResponseCache(client)

	key := "test-" + time.Now().Format("150405.000000")
	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, key, []byte(`[1]`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	body, ok, err := c.Get(ctx, key)
	if err != nil || !ok || string(body) != `[1]` {
		t.Fatalf("unexpected hit: %s ok=%v err=%v", body, ok, err)
	}
}

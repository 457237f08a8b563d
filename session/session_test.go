package session

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"taskpad/domain"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	return NewRedisStore(client, ttl), m
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedisStore(t, time.Hour)
	stores := map[string]domain.SessionStore{
		"memory": NewMemory(),
		"redis":  redisStore,
	}
	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := st.Get(ctx, "tok"); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected not found before put, got %v", err)
			}
			if err := st.Put(ctx, "tok", "u1"); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := st.Get(ctx, "tok")
			if err != nil || got != "u1" {
				t.Fatalf("get: %q %v", got, err)
			}
			if err := st.Delete(ctx, "tok"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := st.Get(ctx, "tok"); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected not found after delete, got %v", err)
			}
			if err := st.Delete(ctx, "tok"); err != nil {
				t.Fatalf("deleting a missing token: %v", err)
			}
		})
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	st, m := newRedisStore(t, time.Minute)
	ctx := context.Background()
	if err := st.Put(ctx, "tok", "u1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !m.Exists("session:tok") {
		t.Fatalf("expected namespaced key")
	}
	if ttl := m.TTL("session:tok"); ttl != time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}
	m.FastForward(2 * time.Minute)
	if _, err := st.Get(ctx, "tok"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestRedisStoreWithoutTTL(t *testing.T) {
	st, m := newRedisStore(t, 0)
	if err := st.Put(context.Background(), "tok", "u1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ttl := m.TTL("session:tok"); ttl != 0 {
		t.Fatalf("expected no ttl, got %v", ttl)
	}
}

func TestRedisStoreSurfacesConnectionErrors(t *testing.T) {
	st, m := newRedisStore(t, time.Minute)
	m.Close()
	if _, err := st.Get(context.Background(), "tok"); err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected a transport error, got %v", err)
	}
}

func TestParseRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		addr     string
		password string
		tls      bool
		wantErr  bool
	}{
		{name: "url", in: "redis://:pw@localhost:6380/0", addr: "localhost:6380", password: "pw"},
		{name: "tls url", in: "rediss://cache:6380", addr: "cache:6380", tls: true},
		{name: "azure", in: "cache.example.net:6380,password=secret,ssl=True,abortConnect=False", addr: "cache.example.net:6380", password: "secret", tls: true},
		{name: "plain", in: "localhost:6379", addr: "localhost:6379"},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseRedisOptions(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if tt.wantErr {
				return
			}
			if opts.Addr != tt.addr || opts.Password != tt.password || (opts.TLSConfig != nil) != tt.tls {
				t.Fatalf("unexpected options: addr=%q password=%q tls=%v", opts.Addr, opts.Password, opts.TLSConfig != nil)
			}
		})
	}
}

package session

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"taskpad/domain"
)

const keyPrefix = "session"

// RedisStore keeps sessions in Redis so every instance sees the same tokens.
// Entries expire after ttl; a zero ttl never expires.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ domain.SessionStore = (*RedisStore)(nil)

// NewRedisStore creates a session store using the provided Redis client and TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(token string) string {
	return keyPrefix + ":" + token
}

func (r *RedisStore) Put(ctx context.Context, token, userID string) error {
	return r.client.Set(ctx, r.key(token), userID, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, r.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errNoSession
	}
	return userID, err
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.key(token)).Err()
}

// ParseRedisOptions accepts a redis:// URL or the Azure cache form
// "host:port,password=secret,ssl=true".
func ParseRedisOptions(conn string) (*redis.Options, error) {
	if conn == "" {
		return nil, errors.New("missing redis connection string")
	}
	if opts, err := redis.ParseURL(conn); err == nil {
		return opts, nil
	}
	parts := strings.Split(conn, ",")
	opts := &redis.Options{Addr: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(strings.TrimSpace(kv[1]), "true") {
				opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			}
		}
	}
	return opts, nil
}

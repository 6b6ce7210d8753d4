// Package session reads and writes login sessions minted by the identity provider.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

// Data is what the identity provider stores for each session token.
type Data struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Store interface {
	Save(ctx context.Context, token string, d Data) error
	Get(ctx context.Context, token string) (*Data, error)
	Delete(ctx context.Context, token string) error
}

// RedisStore keeps sessions under "session:<sha256(token)>" so raw tokens never hit Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
		now:    time.Now,
	}
}

func (s *RedisStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + hex.EncodeToString(sum[:])
}

func (s *RedisStore) Save(ctx context.Context, token string, d Data) error {
	if d.UserID == "" {
		return errors.New("session user id is empty")
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}

	ttl := d.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	raw, err := sonic.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.key(token), raw, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Data, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var d Data
	if err := sonic.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if !d.ExpiresAt.IsZero() && !s.now().Before(d.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

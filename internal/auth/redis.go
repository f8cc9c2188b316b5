package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const sessionKeyPrefix = "session:"

// RedisStore keeps sessions server-side; the token is a random id and
// logout revokes it immediately.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) TTL() time.Duration { return s.ttl }

func (s *RedisStore) Save(ctx context.Context, p models.Principal) (string, error) {
	p.Role = p.EffectiveRole()
	payload, err := json.Marshal(p)
	if err != nil {
		return "", apperr.Internal("encode session", err)
	}
	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", apperr.Internal("store session", err)
	}
	return token, nil
}

func (s *RedisStore) Load(ctx context.Context, token string) (models.Principal, error) {
	if _, err := uuid.Parse(token); err != nil {
		return models.Principal{}, apperr.Unauthorized("invalid session", err)
	}
	raw, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Principal{}, apperr.Unauthorized("session expired", err)
	}
	if err != nil {
		return models.Principal{}, apperr.Internal("load session", err)
	}
	var p models.Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.Principal{}, apperr.Unauthorized("invalid session", err)
	}
	return p, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return apperr.Internal("delete session", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, 30*time.Minute)
}

func TestRedisStore_SaveLoadDelete(t *testing.T) {
	mr, s := setupRedisStore(t)
	ctx := context.Background()

	token, err := s.Save(ctx, models.Principal{Email: "boss@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, mr.Exists(sessionKeyPrefix+token))
	assert.Equal(t, 30*time.Minute, mr.TTL(sessionKeyPrefix+token))

	p, err := s.Load(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "boss@example.com", p.Email)
	assert.True(t, p.IsAdmin())

	require.NoError(t, s.Delete(ctx, token))
	_, err = s.Load(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRedisStore_Expiry(t *testing.T) {
	mr, s := setupRedisStore(t)
	ctx := context.Background()

	token, err := s.Save(ctx, models.Principal{Email: "x@example.com"})
	require.NoError(t, err)

	mr.FastForward(31 * time.Minute)
	_, err = s.Load(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRedisStore_MalformedToken(t *testing.T) {
	_, s := setupRedisStore(t)
	_, err := s.Load(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr, s := setupRedisStore(t)
	token, err := s.Save(context.Background(), models.Principal{Email: "x@example.com"})
	require.NoError(t, err)

	mr.Close()
	_, err = s.Load(context.Background(), token)
	assert.ErrorIs(t, err, apperr.ErrInternal)
	assert.Error(t, s.Ping(context.Background()))
}

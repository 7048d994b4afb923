package repository

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func unreachableRepository(t *testing.T) *RedisRepository {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewRedisRepository(client, 0)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestNewRedisRepository_DefaultTTL(t *testing.T) {
	repo := unreachableRepository(t)
	assert.Equal(t, 24*time.Hour, repo.ttl)
	assert.NotNil(t, repo.Client())
}

func TestRedisRepository_ErrorsSurface(t *testing.T) {
	repo := unreachableRepository(t)
	ctx := context.Background()

	assert.Error(t, repo.Ping(ctx))

	suppressed, err := repo.IsTokenSuppressed(ctx, "tok")
	assert.Error(t, err)
	assert.False(t, suppressed)

	assert.Error(t, repo.SuppressToken(ctx, "tok", time.Minute))

	claimed, err := repo.SetNX(ctx, "k", time.Minute)
	assert.Error(t, err)
	assert.False(t, claimed)

	var dest map[string]string
	found, err := repo.GetJSON(ctx, "k", &dest)
	assert.Error(t, err)
	assert.False(t, found)
}

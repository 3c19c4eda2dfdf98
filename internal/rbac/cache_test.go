package rbac

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *PermissionCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPermissionCache(client, time.Minute)
}

func TestPermissionCacheAvoidsRepeatLoads(t *testing.T) {
	cache := newTestCache(t)
	calls := 0
	loader := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"MODULO_VENTAS_VER"}, nil
	}

	perms, err := cache.Fetch(context.Background(), 1, loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"MODULO_VENTAS_VER"}, perms)

	perms, err = cache.Fetch(context.Background(), 1, loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"MODULO_VENTAS_VER"}, perms)
	assert.Equal(t, 1, calls)
}

func TestPermissionCacheInvalidate(t *testing.T) {
	cache := newTestCache(t)
	calls := 0
	loader := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"MODULO_VENTAS_VER"}, nil
	}

	_, err := cache.Fetch(context.Background(), 1, loader)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(context.Background()))

	_, err = cache.Fetch(context.Background(), 1, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "invalidation must force a fresh load")
}

func TestPermissionCacheNilClientPassesThrough(t *testing.T) {
	var cache *PermissionCache
	perms, err := cache.Fetch(context.Background(), 1, func(ctx context.Context) ([]string, error) {
		return []string{"MODULO_CITAS_VER"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"MODULO_CITAS_VER"}, perms)
}

func TestPermissionCacheKeysPerUser(t *testing.T) {
	cache := newTestCache(t)

	permsA, err := cache.Fetch(context.Background(), 1, func(ctx context.Context) ([]string, error) {
		return []string{"MODULO_VENTAS_VER"}, nil
	})
	require.NoError(t, err)
	permsB, err := cache.Fetch(context.Background(), 2, func(ctx context.Context) ([]string, error) {
		return []string{"MODULO_CITAS_VER"}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"MODULO_VENTAS_VER"}, permsA)
	assert.Equal(t, []string{"MODULO_CITAS_VER"}, permsB)
}

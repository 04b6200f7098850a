package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/magic-lib/go-plat-redisbloom/store"
	"github.com/magic-lib/go-plat-startupcfg/startupcfg"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*store.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cli := redis.NewClient(&redis.Options{
		Addr:            mr.Addr(),
		MaxRetries:      -1,
		DisableIdentity: true,
	})
	t.Cleanup(func() { _ = cli.Close() })
	return store.NewRedisStore(cli), mr
}

func TestRedisStore(t *testing.T) {
	s, _ := newRedisStore(t)
	testBitStore(t, s)
}

func TestRedisStoreKeepsTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	_, err := s.SetBit(ctx, "ns", 7, 1)
	require.NoError(t, err)
	require.NoError(t, s.Expire(ctx, "ns", time.Minute))

	_, err = s.SetBit(ctx, "ns", 70, 1)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "ns", ""))
	assert.Equal(t, time.Minute, mr.TTL("ns"))

	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists("ns"))
}

func TestRedisStoreMatchesMemoryStore(t *testing.T) {
	ctx := context.Background()
	rs, mr := newRedisStore(t)
	ms := store.NewMemoryStore()

	offsets := []int64{0, 1, 7, 8, 15, 63, 64, 1000, 1001}
	for _, s := range []filter.BitStore{rs, ms} {
		_, err := s.Pipelined(ctx, func(p filter.Pipeline) {
			for _, off := range offsets {
				p.SetBit("layout", off, 1)
			}
		})
		require.NoError(t, err)
	}

	want, err := mr.Get("layout")
	require.NoError(t, err)
	got, ok, err := ms.Get(ctx, "layout")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(want), []byte(got))
}

func TestRedisStoreClosed(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)
	mr.Close()

	_, err := s.GetBit(ctx, "ns", 1)
	assert.Error(t, err)
	_, _, err = s.Get(ctx, "ns")
	assert.Error(t, err)
	results, err := s.Pipelined(ctx, func(p filter.Pipeline) {
		p.SetBit("ns", 1, 1)
	})
	assert.Error(t, err)
	assert.Nil(t, results)
}

func TestNewRedisStoreFromConfig(t *testing.T) {
	_, err := store.NewRedisStoreFromConfig(nil)
	require.Error(t, err)

	_, err = store.NewRedisStoreFromConfig(&startupcfg.RedisConfig{Type: "sentinel"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sentinel")
}

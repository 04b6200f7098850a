package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBitStore 各实现共同遵守的行为
func testBitStore(t *testing.T, s filter.BitStore) {
	ctx := context.Background()

	t.Run("bits", func(t *testing.T) {
		bit, err := s.GetBit(ctx, "bits", 17)
		require.NoError(t, err)
		assert.Zero(t, bit)

		old, err := s.SetBit(ctx, "bits", 17, 1)
		require.NoError(t, err)
		assert.Zero(t, old)
		old, err = s.SetBit(ctx, "bits", 17, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), old)

		bit, err = s.GetBit(ctx, "bits", 17)
		require.NoError(t, err)
		assert.Equal(t, int64(1), bit)

		// 17 位于第3个字节，高位在前：00000000 00000000 01000000
		val, ok, err := s.Get(ctx, "bits")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "\x00\x00\x40", val)

		n, err := s.StrLen(ctx, "bits")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		old, err = s.SetBit(ctx, "bits", 17, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), old)
		n, err = s.StrLen(ctx, "bits")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n, "clearing a bit never shrinks the string")
	})

	t.Run("counter", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			got, err := s.Incr(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
		val, ok, err := s.Get(ctx, "counter")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "3", val)
	})

	t.Run("missing", func(t *testing.T) {
		val, ok, err := s.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, val)

		n, err := s.StrLen(ctx, "missing")
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, s.Expire(ctx, "missing", time.Minute))
	})

	t.Run("set", func(t *testing.T) {
		_, err := s.SetBit(ctx, "reset", 100, 1)
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, "reset", ""))

		n, err := s.StrLen(ctx, "reset")
		require.NoError(t, err)
		assert.Zero(t, n)
		bit, err := s.GetBit(ctx, "reset", 100)
		require.NoError(t, err)
		assert.Zero(t, bit)
	})

	t.Run("pipeline", func(t *testing.T) {
		results, err := s.Pipelined(ctx, func(p filter.Pipeline) {
			p.SetBit("pipe", 3, 1)
			p.SetBit("pipe", 3, 1)
			p.GetBit("pipe", 3)
			p.GetBit("pipe", 4)
			p.Incr("pipe/count")
			p.Incr("pipe/count")
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 1, 1, 0, 1, 2}, results)

		results, err = s.Pipelined(ctx, func(p filter.Pipeline) {})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("pipeline error", func(t *testing.T) {
		_, err := s.SetBit(ctx, "not-a-counter", 0, 1)
		require.NoError(t, err)
		_, err = s.Pipelined(ctx, func(p filter.Pipeline) {
			p.SetBit("pipe-err", 1, 1)
			p.Incr("not-a-counter")
		})
		require.Error(t, err)
	})
}

package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/magic-lib/go-plat-redisbloom/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*store.MemoryStore
}

func (failingStore) Pipelined(context.Context, func(filter.Pipeline)) ([]int64, error) {
	return nil, errors.New("connection refused")
}

func TestLoadKeys(t *testing.T) {
	ctx := context.Background()
	f, err := filter.New(ctx, store.NewMemoryStore(), &filter.Option{Size: 1009, Hashes: 3, Counting: true})
	require.NoError(t, err)

	n, err := loadKeys(ctx, f, strings.NewReader("a\n\n  b \nc\n"), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	ok, err := f.Includes(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.True(t, ok)
	count, err := f.InsertCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestLoadKeysStopsOnError(t *testing.T) {
	ctx := context.Background()
	f, err := filter.New(ctx, failingStore{store.NewMemoryStore()}, nil)
	require.NoError(t, err)

	n, err := loadKeys(ctx, f, strings.NewReader("a\nb\n"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Zero(t, n)
}

func TestFilterOption(t *testing.T) {
	opt := filterOption()
	require.NotNil(t, opt.Seed)
	assert.Equal(t, int64(0), *opt.Seed)
	assert.Equal(t, int64(100), opt.Size)
	assert.Equal(t, 4, opt.Hashes)
	assert.Equal(t, "redis", opt.Namespace)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/magic-lib/go-plat-redisbloom/store/internal/redisclient"
	"github.com/magic-lib/go-plat-startupcfg/startupcfg"
	"github.com/redis/go-redis/v9"
)

// RedisStore 基于 go-redis v9 的位存储，支持单节点、集群、Ring
type RedisStore struct {
	cli redis.UniversalClient
}

// NewRedisStore 使用已有的客户端
func NewRedisStore(cli redis.UniversalClient) *RedisStore {
	return &RedisStore{cli: cli}
}

// NewRedisStoreFromConfig 按 startupcfg 配置获取客户端，同一数据源复用同一个客户端
func NewRedisStoreFromConfig(redisCfg *startupcfg.RedisConfig) (*RedisStore, error) {
	cli, err := redisclient.Get(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("redis NewRedisStoreFromConfig error: %w", err)
	}
	return NewRedisStore(cli), nil
}

// GetBit xxx
func (s *RedisStore) GetBit(ctx context.Context, key string, offset int64) (int64, error) {
	return s.cli.GetBit(ctx, key, offset).Result()
}

// SetBit 返回该位原来的值
func (s *RedisStore) SetBit(ctx context.Context, key string, offset int64, value int) (int64, error) {
	return s.cli.SetBit(ctx, key, offset, value).Result()
}

// Incr xxx
func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.cli.Incr(ctx, key).Result()
}

// Get key 不存在时返回 false
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.cli.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set 保留原有的过期时间
func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	return s.cli.Set(ctx, key, value, redis.KeepTTL).Err()
}

// StrLen xxx
func (s *RedisStore) StrLen(ctx context.Context, key string) (int64, error) {
	return s.cli.StrLen(ctx, key).Result()
}

// Expire xxx
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.cli.Expire(ctx, key, ttl).Err()
}

// Pipelined 批量执行
func (s *RedisStore) Pipelined(ctx context.Context, fn func(p filter.Pipeline)) ([]int64, error) {
	pipe := &redisPipeline{ctx: ctx, pipe: s.cli.Pipeline()}
	fn(pipe)
	if len(pipe.cmds) == 0 {
		return []int64{}, nil
	}
	if _, err := pipe.pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis pipe Exec error: %w", err)
	}
	results := make([]int64, len(pipe.cmds))
	for i, cmd := range pipe.cmds {
		results[i] = cmd.Val()
	}
	return results, nil
}

// Client 底层客户端
func (s *RedisStore) Client() redis.UniversalClient {
	return s.cli
}

type redisPipeline struct {
	ctx  context.Context
	pipe redis.Pipeliner
	cmds []*redis.IntCmd
}

func (p *redisPipeline) SetBit(key string, offset int64, value int) {
	p.cmds = append(p.cmds, p.pipe.SetBit(p.ctx, key, offset, value))
}

func (p *redisPipeline) GetBit(key string, offset int64) {
	p.cmds = append(p.cmds, p.pipe.GetBit(p.ctx, key, offset))
}

func (p *redisPipeline) Incr(key string) {
	p.cmds = append(p.cmds, p.pipe.Incr(p.ctx, key))
}

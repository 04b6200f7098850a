package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/magic-lib/go-plat-utils/logs"
)

var (
	onceError sync.Once

	// ErrNoRedisOption 未设置redis连接参数
	ErrNoRedisOption = errors.New("redis options not set")
)

// redisClient go-redis v8 的位存储，连接由 redisClientManager 统一管理和检测
type redisClient struct {
	redisOpt    *redis.Options
	pingTimeout time.Duration
}

// NewRedisClient 新建redis连接，pingTimeout<=0 时使用默认值
func NewRedisClient(redisOpt *redis.Options, pingTimeout ...time.Duration) *redisClient {
	rc := &redisClient{redisOpt: redisOpt}
	if len(pingTimeout) > 0 {
		rc.pingTimeout = pingTimeout[0]
	}
	return rc
}

// GetBit xxx
func (r *redisClient) GetBit(ctx context.Context, key string, offset int64) (int64, error) {
	c, err := r.getClient(ctx)
	if err != nil {
		return 0, err
	}
	return c.GetBit(ctx, key, offset).Result()
}

// SetBit 返回该位原来的值
func (r *redisClient) SetBit(ctx context.Context, key string, offset int64, value int) (int64, error) {
	c, err := r.getClient(ctx)
	if err != nil {
		return 0, err
	}
	return c.SetBit(ctx, key, offset, value).Result()
}

// Incr xxx
func (r *redisClient) Incr(ctx context.Context, key string) (int64, error) {
	c, err := r.getClient(ctx)
	if err != nil {
		return 0, err
	}
	return c.Incr(ctx, key).Result()
}

// Get 从缓存中取得一个值，key不存在时返回false
func (r *redisClient) Get(ctx context.Context, key string) (string, bool, error) {
	c, err := r.getClient(ctx)
	if err != nil {
		return "", false, err
	}
	rep, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rep, true, nil
}

// Set 保留原有的过期时间
func (r *redisClient) Set(ctx context.Context, key string, val string) error {
	c, err := r.getClient(ctx)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, val, redis.KeepTTL).Err()
}

// StrLen xxx
func (r *redisClient) StrLen(ctx context.Context, key string) (int64, error) {
	c, err := r.getClient(ctx)
	if err != nil {
		return 0, err
	}
	return c.StrLen(ctx, key).Result()
}

// Expire xxx
func (r *redisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	c, err := r.getClient(ctx)
	if err != nil {
		return err
	}
	return c.Expire(ctx, key, ttl).Err()
}

// BatchExec 批量执行
func (r *redisClient) BatchExec(ctx context.Context, f func(ctx context.Context, pipe redis.Pipeliner) []redis.Cmder) ([]redis.Cmder, error) {
	c, err := r.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis getClient error: %w", err)
	}
	pipe := c.Pipeline()
	cmdList := f(ctx, pipe)
	if len(cmdList) == 0 {
		return cmdList, nil
	}
	_, err = pipe.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis pipe Exec error: %w", err)
	}
	return cmdList, nil
}

// Pipelined 基于 BatchExec 的批量位操作
func (r *redisClient) Pipelined(ctx context.Context, fn func(p filter.Pipeline)) ([]int64, error) {
	cmdList, err := r.BatchExec(ctx, func(ctx context.Context, pipe redis.Pipeliner) []redis.Cmder {
		p := &redisV8Pipeline{ctx: ctx, pipe: pipe}
		fn(p)
		return p.cmds
	})
	if err != nil {
		return nil, err
	}
	results := make([]int64, len(cmdList))
	for i, cmd := range cmdList {
		results[i] = cmd.(*redis.IntCmd).Val()
	}
	return results, nil
}

// CheckConnect 是否能连上
func (r *redisClient) CheckConnect() bool {
	_, err := r.getOneRedis()
	return err == nil
}

func (r *redisClient) getClient(_ context.Context) (*redis.Client, error) {
	cli, err := r.getOneRedis()
	if cli != nil && err == nil {
		return cli, nil
	}

	loggers := logs.DefaultLogger()
	if r.redisOpt != nil {
		loggers.Error("[redis-client] error:", datasourceName(r.redisOpt), err.Error())
	} else {
		// 没有设置，全局只提醒一次
		onceError.Do(func() {
			loggers.Warn("[redis-client] no set empty:", err.Error())
		})
	}
	return nil, err
}

func (r *redisClient) getOneRedis() (*redis.Client, error) {
	if r.redisOpt == nil {
		return nil, ErrNoRedisOption
	}
	manager := newRedisClientManager(checkConnInterval)
	cli, err := manager.get(r.redisOpt, r.pingTimeout)
	if err != nil {
		return nil, fmt.Errorf("conn cant connect: %w", err)
	}
	return cli, nil
}

type redisV8Pipeline struct {
	ctx  context.Context
	pipe redis.Pipeliner
	cmds []redis.Cmder
}

func (p *redisV8Pipeline) SetBit(key string, offset int64, value int) {
	p.cmds = append(p.cmds, p.pipe.SetBit(p.ctx, key, offset, value))
}

func (p *redisV8Pipeline) GetBit(key string, offset int64) {
	p.cmds = append(p.cmds, p.pipe.GetBit(p.ctx, key, offset))
}

func (p *redisV8Pipeline) Incr(key string) {
	p.cmds = append(p.cmds, p.pipe.Incr(p.ctx, key))
}

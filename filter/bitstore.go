package filter

import (
	"context"
	"time"
)

// BitStore 远端位存储需要提供的原语，redis 是默认实现
type BitStore interface {
	GetBit(ctx context.Context, key string, offset int64) (int64, error)
	SetBit(ctx context.Context, key string, offset int64, value int) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
	// Get 第二个返回值表示key是否存在
	Get(ctx context.Context, key string) (string, bool, error)
	// Set 覆盖值，保留key上已有的过期时间
	Set(ctx context.Context, key string, value string) error
	StrLen(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// Pipelined 一次往返执行fn中排队的全部命令，按排队顺序返回整数结果。
	// 批量失败时不返回任何结果，调用方不能假设其中部分命令已生效。
	Pipelined(ctx context.Context, fn func(p Pipeline)) ([]int64, error)
}

// Pipeline 批量命令的排队接口
type Pipeline interface {
	SetBit(key string, offset int64, value int)
	GetBit(key string, offset int64)
	Incr(key string)
}

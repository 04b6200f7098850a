// Package filter 位数组存放在远端共享存储（redis）中的布隆过滤器。
// 多个进程共用同一个 namespace 即共用同一个过滤器，协调完全依赖存储单条命令的原子性。
package filter

import (
	"context"
	"fmt"

	"github.com/magic-lib/go-plat-utils/conv"
	"github.com/magic-lib/go-plat-utils/logs"
	"github.com/samber/lo"
)

// RedisFilter 远端布隆过滤器
type RedisFilter struct {
	store BitStore
	opt   *Option
}

// Stats 过滤器的配置统计
type Stats struct {
	Size   int64
	Hashes int
}

// New 新建过滤器，opt 为 nil 时使用默认配置
func New(ctx context.Context, store BitStore, opt *Option) (*RedisFilter, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is nil", ErrConfiguration)
	}
	opt = initOption(opt)
	if err := opt.validate(); err != nil {
		return nil, err
	}
	if opt.weakSize() {
		logs.DefaultLogger().Warn("[bloom-filter] size has a large power-of-two factor, false positive rate will be far above estimate:",
			opt.Namespace, opt.Size)
	}
	f := &RedisFilter{
		store: store,
		opt:   opt,
	}
	if opt.Eager {
		// 哨兵位在下标范围之外，不会被任何key读到，也不会覆盖其他写入者的位
		f.opt.Metrics.roundTrip()
		if _, err := store.SetBit(ctx, opt.Namespace, opt.Size, 1); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Option 生效中的配置副本，Seed 已确定，可用于在其他进程中创建兼容的过滤器
func (f *RedisFilter) Option() *Option {
	return f.opt.WithSeed(*f.opt.Seed)
}

func (f *RedisFilter) indices(key string) []int64 {
	return Indices(key, f.opt.Size, f.opt.Hashes, *f.opt.Seed)
}

// Insert 在一个批量请求里置位key的全部下标，开启计数时同时累加计数器。
// 计数器由0变为1的调用方负责设置过期时间，之后的插入不会刷新过期时间。
func (f *RedisFilter) Insert(ctx context.Context, key string) error {
	m := f.opt.Metrics
	m.call(opInsert)

	indices := f.indices(key)
	m.roundTrip()
	results, err := f.store.Pipelined(ctx, func(p Pipeline) {
		for _, idx := range indices {
			p.SetBit(f.opt.Namespace, idx, 1)
		}
		if f.opt.Counting {
			p.Incr(f.opt.countKey())
		}
	})
	if err != nil {
		m.fail(opInsert, err)
		return err
	}

	if !f.opt.Counting || f.opt.Expire <= 0 || len(results) == 0 {
		return nil
	}
	if results[len(results)-1] != 1 {
		return nil
	}
	m.roundTrip()
	err = f.store.Expire(ctx, f.opt.Namespace, f.opt.Expire)
	m.fail(opInsert, err)
	return err
}

// Includes 所有key都可能存在时返回true，任一key确定不存在即返回false，不再检查后面的key。
// 不传key时返回true。
func (f *RedisFilter) Includes(ctx context.Context, keys ...string) (bool, error) {
	m := f.opt.Metrics
	m.call(opIncludes)

	for _, key := range keys {
		ok, err := f.includes(ctx, key)
		if err != nil {
			m.fail(opIncludes, err)
			return false, err
		}
		m.lookup(ok)
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// includes 先单独读第一位，为0时省掉一次批量读取
func (f *RedisFilter) includes(ctx context.Context, key string) (bool, error) {
	indices := f.indices(key)

	f.opt.Metrics.roundTrip()
	bit, err := f.store.GetBit(ctx, f.opt.Namespace, indices[0])
	if err != nil {
		return false, err
	}
	if bit == 0 {
		return false, nil
	}

	rest := indices[1:]
	if len(rest) == 0 {
		return true, nil
	}
	f.opt.Metrics.roundTrip()
	bits, err := f.store.Pipelined(ctx, func(p Pipeline) {
		for _, idx := range rest {
			p.GetBit(f.opt.Namespace, idx)
		}
	})
	if err != nil {
		return false, err
	}
	return !lo.Contains(bits, 0), nil
}

// Delete 在一个批量请求里把key的全部下标清零。
// 注意：下标是各key共享的，清零可能同时清掉其他已插入key依赖的位，使它们被误判为不存在。
// 这是共享位结构的固有性质，不会作为错误返回。
func (f *RedisFilter) Delete(ctx context.Context, key string) error {
	m := f.opt.Metrics
	m.call(opDelete)

	indices := f.indices(key)
	m.roundTrip()
	_, err := f.store.Pipelined(ctx, func(p Pipeline) {
		for _, idx := range indices {
			p.SetBit(f.opt.Namespace, idx, 0)
		}
	})
	m.fail(opDelete, err)
	return err
}

// Clear 一条命令把位数组重置为空，不修改计数器
func (f *RedisFilter) Clear(ctx context.Context) error {
	m := f.opt.Metrics
	m.call(opClear)
	m.roundTrip()
	err := f.store.Set(ctx, f.opt.Namespace, "")
	m.fail(opClear, err)
	return err
}

// StorageSize 位数组在存储中占用的字节数，不是置位数，也不是元素个数
func (f *RedisFilter) StorageSize(ctx context.Context) (int64, error) {
	f.opt.Metrics.roundTrip()
	return f.store.StrLen(ctx, f.opt.Namespace)
}

// InsertCount 计数器当前值，从未累加或未开启计数时为0。统计的是Insert调用次数，不是不同key的个数。
func (f *RedisFilter) InsertCount(ctx context.Context) (int64, error) {
	f.opt.Metrics.roundTrip()
	val, ok, err := f.store.Get(ctx, f.opt.countKey())
	if err != nil {
		return 0, err
	}
	if !ok || val == "" {
		return 0, nil
	}
	count, ok := conv.Int64(val)
	if !ok {
		return 0, fmt.Errorf("bloom filter counter %s holds a non-integer value %q", f.opt.countKey(), val)
	}
	return count, nil
}

// Stats 只包含配置的 m 和 k
func (f *RedisFilter) Stats() Stats {
	return Stats{
		Size:   f.opt.Size,
		Hashes: f.opt.Hashes,
	}
}

// Describe xxx
func (f *RedisFilter) Describe() string {
	return fmt.Sprintf("Number of filter buckets (m): %d\nNumber of filter hashes (k) : %d\n",
		f.opt.Size, f.opt.Hashes)
}

package filter

import (
	"fmt"
	"math/bits"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/samber/lo"
)

const (
	defaultSize      int64 = 100
	defaultHashes          = 4
	defaultNamespace       = "redis"

	// redis 位偏移最大为 2^32-1，Eager 的哨兵位占用偏移 Size
	maxSize int64 = 1<<32 - 1

	countSuffix = "/count"

	weakSizeShift = 8
)

// Option 过滤器配置，构造后不可变
type Option struct {
	Size      int64         // 位数组长度 m
	Hashes    int           // 每个key映射的位数 k
	Seed      *int64        // 哈希种子，nil 时取当前时间(秒)，不同时间创建的过滤器互不兼容
	Namespace string        // 位数组在存储中的key，计数器为 Namespace+"/count"
	Counting  bool          // 每次Insert都累加计数器
	Expire    time.Duration // >0 时，计数器从0变为1的那一次给位数组设置过期时间
	Eager     bool          // 构造时写入哨兵位，让存储一次性分配完整的位数组
	Metrics   *Metrics      // 可选的 prometheus 指标
}

// EstimateOption 按预计元素个数n和误判率p计算 Size 与 Hashes。
// Size 取奇数：crc32 是线性的，Size 含较大的2的幂因子时各哈希的低位相关，误判率远高于理论值。
func EstimateOption(n uint, p float64) *Option {
	m, k := bloom.EstimateParameters(n, p)
	m |= 1
	return &Option{
		Size:   int64(m),
		Hashes: int(k),
	}
}

// WithSeed 返回设置了固定种子的副本
func (o *Option) WithSeed(seed int64) *Option {
	ret := *o
	ret.Seed = lo.ToPtr(seed)
	return &ret
}

// DefaultOption 默认配置：100位，4个哈希，namespace为redis
func DefaultOption() *Option {
	return &Option{
		Size:      defaultSize,
		Hashes:    defaultHashes,
		Namespace: defaultNamespace,
	}
}

// initOption 复制一份配置，nil 使用默认配置；Size/Hashes 不做补全，交给 validate 拒绝
func initOption(opt *Option) *Option {
	if opt == nil {
		opt = DefaultOption()
	}
	ret := *opt
	if ret.Seed == nil {
		ret.Seed = lo.ToPtr(time.Now().Unix())
	} else {
		ret.Seed = lo.ToPtr(*ret.Seed)
	}
	if ret.Namespace == "" {
		ret.Namespace = defaultNamespace
	}
	return &ret
}

func (o *Option) validate() error {
	if o.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrConfiguration, o.Size)
	}
	if o.Size > maxSize {
		return fmt.Errorf("%w: size %d exceeds the store offset limit %d", ErrConfiguration, o.Size, maxSize)
	}
	if o.Hashes <= 0 {
		return fmt.Errorf("%w: hashes must be positive, got %d", ErrConfiguration, o.Hashes)
	}
	if o.Expire < 0 {
		return fmt.Errorf("%w: expire must not be negative, got %s", ErrConfiguration, o.Expire)
	}
	return nil
}

// weakSize Size 含 2^8 及以上的因子
func (o *Option) weakSize() bool {
	return bits.TrailingZeros64(uint64(o.Size)) >= weakSizeShift
}

func (o *Option) countKey() string {
	return o.Namespace + countSuffix
}

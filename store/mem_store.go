package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/magic-lib/go-plat-utils/conv"
	gocache "github.com/patrickmn/go-cache"
)

// ErrNotInteger 值不是整数，不能累加
var ErrNotInteger = errors.New("value is not an integer or out of range")

// MemoryStore 进程内的位存储，位序与 redis 一致（字节内高位在前），适合单进程或测试使用
type MemoryStore struct {
	mu    sync.Mutex
	items *gocache.Cache
}

// NewMemoryStore 新建
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

// GetBit xxx
func (s *MemoryStore) GetBit(_ context.Context, key string, offset int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getBit(key, offset)
}

// SetBit 返回该位原来的值
func (s *MemoryStore) SetBit(_ context.Context, key string, offset int64, value int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setBit(key, offset, value)
}

// Incr xxx
func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incr(key)
}

// Get xxx
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, _, ok := s.load(key)
	if !ok {
		return "", false, nil
	}
	return string(val), true, nil
}

// Set 保留原有的过期时间
func (s *MemoryStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ttl, _ := s.load(key)
	s.items.Set(key, []byte(value), ttl)
	return nil
}

// StrLen xxx
func (s *MemoryStore) StrLen(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, _, _ := s.load(key)
	return int64(len(val)), nil
}

// Expire ttl<=0 时直接删除，与 redis 一致；key 不存在时不做任何事
func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, _, ok := s.load(key)
	if !ok {
		return nil
	}
	if ttl <= 0 {
		s.items.Delete(key)
		return nil
	}
	s.items.Set(key, val, ttl)
	return nil
}

// TTL 剩余过期时间，未设置过期时第二个返回值为false
func (s *MemoryStore) TTL(key string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ttl, ok := s.load(key)
	if !ok || ttl == gocache.NoExpiration {
		return 0, false
	}
	return ttl, true
}

// Pipelined 整个批量在一把锁内按顺序执行，遇到错误即停止
func (s *MemoryStore) Pipelined(_ context.Context, fn func(p filter.Pipeline)) ([]int64, error) {
	pipe := &memPipeline{}
	fn(pipe)

	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]int64, len(pipe.ops))
	for i, op := range pipe.ops {
		ret, err := op(s)
		if err != nil {
			return nil, fmt.Errorf("memory pipe Exec error: %w", err)
		}
		results[i] = ret
	}
	return results, nil
}

// load 调用方需持有锁，ttl 为 gocache.NoExpiration 表示不过期
func (s *MemoryStore) load(key string) ([]byte, time.Duration, bool) {
	v, expireAt, ok := s.items.GetWithExpiration(key)
	if !ok {
		return nil, gocache.NoExpiration, false
	}
	ttl := gocache.NoExpiration
	if !expireAt.IsZero() {
		ttl = time.Until(expireAt)
		if ttl <= 0 {
			return nil, gocache.NoExpiration, false
		}
	}
	return v.([]byte), ttl, true
}

func (s *MemoryStore) getBit(key string, offset int64) (int64, error) {
	if offset < 0 {
		return 0, fmt.Errorf("bit offset %d is out of range", offset)
	}
	val, _, _ := s.load(key)
	byteIdx := offset / 8
	if byteIdx >= int64(len(val)) {
		return 0, nil
	}
	return int64(val[byteIdx]>>(7-uint(offset%8))) & 1, nil
}

func (s *MemoryStore) setBit(key string, offset int64, value int) (int64, error) {
	if offset < 0 {
		return 0, fmt.Errorf("bit offset %d is out of range", offset)
	}
	if value != 0 && value != 1 {
		return 0, fmt.Errorf("bit value %d is out of range", value)
	}
	val, ttl, ok := s.load(key)
	byteIdx := offset / 8
	if byteIdx >= int64(len(val)) {
		grown := make([]byte, byteIdx+1)
		copy(grown, val)
		val = grown
		ok = false
	}
	mask := byte(1) << (7 - uint(offset%8))
	old := int64(0)
	if val[byteIdx]&mask != 0 {
		old = 1
	}
	if value == 1 {
		val[byteIdx] |= mask
	} else {
		val[byteIdx] &^= mask
	}
	if !ok {
		s.items.Set(key, val, ttl)
	}
	return old, nil
}

func (s *MemoryStore) incr(key string) (int64, error) {
	val, ttl, ok := s.load(key)
	var n int64
	if ok {
		var valid bool
		if n, valid = conv.Int64(string(val)); !valid {
			return 0, ErrNotInteger
		}
	}
	n++
	s.items.Set(key, []byte(conv.String(n)), ttl)
	return n, nil
}

type memPipeline struct {
	ops []func(s *MemoryStore) (int64, error)
}

func (p *memPipeline) SetBit(key string, offset int64, value int) {
	p.ops = append(p.ops, func(s *MemoryStore) (int64, error) {
		return s.setBit(key, offset, value)
	})
}

func (p *memPipeline) GetBit(key string, offset int64) {
	p.ops = append(p.ops, func(s *MemoryStore) (int64, error) {
		return s.getBit(key, offset)
	})
}

func (p *memPipeline) Incr(key string) {
	p.ops = append(p.ops, func(s *MemoryStore) (int64, error) {
		return s.incr(key)
	})
}

// Package store 过滤器位数组的存储实现：redis(go-redis v9/v8) 与进程内存储
package store

import "github.com/magic-lib/go-plat-redisbloom/filter"

var (
	_ filter.BitStore = (*RedisStore)(nil)
	_ filter.BitStore = (*redisClient)(nil)
	_ filter.BitStore = (*MemoryStore)(nil)
)

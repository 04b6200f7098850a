package store

import (
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/magic-lib/go-plat-utils/goroutines"
	"github.com/magic-lib/go-plat-utils/logs"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	redisMap       = cmap.New[*redisConn]()
	once           sync.Once
	managerMu      sync.Mutex
	defaultManager *redisClientManager

	checkConnInterval = 20 * time.Second
)

// redisConn 一个数据源对应的连接
type redisConn struct {
	mu          sync.RWMutex
	redisOpt    *redis.Options
	pingTimeout time.Duration
	cli         *redis.Client
}

func (rc *redisConn) client() *redis.Client {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.cli
}

func (rc *redisConn) replace(cli *redis.Client) {
	rc.mu.Lock()
	old := rc.cli
	rc.cli = cli
	rc.mu.Unlock()
	if old != nil && old != cli {
		_ = old.Close() //老的连接需要释放掉
	}
}

type redisClientManager struct {
}

// newRedisClientManager 进程内唯一，首次调用时启动连接检测
func newRedisClientManager(interval time.Duration) *redisClientManager {
	once.Do(func() {
		goroutines.GoAsync(func(params ...any) {
			monitorRedisConnections(interval)
		}, nil)
	})
	managerMu.Lock()
	defer managerMu.Unlock()
	if defaultManager == nil {
		defaultManager = &redisClientManager{}
	}
	return defaultManager
}

// get 取得数据源对应的客户端，没有则创建；连接失败返回错误
func (r *redisClientManager) get(redisOpt *redis.Options, pingTimeout time.Duration) (*redis.Client, error) {
	name := datasourceName(redisOpt)
	rc, ok := redisMap.Get(name)
	if !ok {
		redisMap.SetIfAbsent(name, &redisConn{
			redisOpt:    redisOpt,
			pingTimeout: pingTimeout,
		})
		rc, _ = redisMap.Get(name)
	}
	if cli := rc.client(); cli != nil {
		return cli, nil
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.cli != nil {
		return rc.cli, nil
	}
	newClient, err := getRedisFromOption(rc.redisOpt, rc.pingTimeout)
	if err != nil {
		return nil, err
	}
	rc.cli = newClient
	return newClient, nil
}

// monitorRedisConnections 定时检测所有 Redis 连接，失效则重建
func monitorRedisConnections(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		for name, rc := range redisMap.Items() {
			if cli := rc.client(); cli != nil {
				if err := checkConnection(cli, rc.pingTimeout); err == nil {
					continue
				}
			}
			newClient, err := getRedisFromOption(rc.redisOpt, rc.pingTimeout)
			if err != nil {
				// 下一个周期再尝试
				continue
			}
			logs.DefaultLogger().Warn("[redis-client] reconnected:", name)
			rc.replace(newClient)
		}
	}
}

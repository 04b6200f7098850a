package store

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	defaultPingTimeout = 3 * time.Second

	poolMaxSize = 100
	poolMinSize = 10

	poolMinIdleConns = 30            //连接池中最小的空闲连接数，可以通过此属性提供更快的连接分配，默认为0
	poolMaxConnAge   = 3 * time.Hour //Redis 连接的最大寿命，到期后客户端关闭该连接，避免连接长时间占用资源
	poolIdleTimeout  = 5 * time.Minute
	// 空闲连接检查频率
	poolIdleCheckFrequency = time.Minute
)

func checkConnection(conn *redis.Client, pingTimeout time.Duration) error {
	if conn == nil {
		return fmt.Errorf("conn is nil")
	}

	timeout := defaultPingTimeout
	if pingTimeout > 0 {
		timeout = pingTimeout
	}

	newCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return conn.Ping(newCtx).Err()
}

func getRedisFromOption(redisOpt *redis.Options, pingTimeout time.Duration) (*redis.Client, error) {
	dialOpt := getRedisOption(redisOpt, getPoolSize())
	newClient := redis.NewClient(dialOpt)
	err := checkConnection(newClient, pingTimeout)
	if err != nil {
		_ = newClient.Close()
		return nil, err
	}
	return newClient, nil
}

// getRedisOption 复制一份配置，未设置的连接池参数使用默认值
func getRedisOption(redisOpt *redis.Options, poolSize int) *redis.Options {
	dialOpt := *redisOpt

	if dialOpt.PoolSize <= 0 {
		dialOpt.PoolSize = poolSize //连接池中最多能同时存放的 Redis 连接数，即最大连接数
	}
	if dialOpt.MinIdleConns <= 0 {
		dialOpt.MinIdleConns = poolMinIdleConns
	}
	if dialOpt.MaxConnAge <= 0 {
		dialOpt.MaxConnAge = poolMaxConnAge
	}
	if dialOpt.IdleTimeout == 0 {
		dialOpt.IdleTimeout = poolIdleTimeout //设为-1可以禁用连接空闲超时检查
	}
	if dialOpt.IdleCheckFrequency == 0 {
		dialOpt.IdleCheckFrequency = poolIdleCheckFrequency
	}
	dialOpt.PoolFIFO = true
	return &dialOpt
}

func getPoolSize() int {
	poolSize := runtime.GOMAXPROCS(0)
	if poolSize < poolMinSize {
		poolSize = poolMinSize
	}
	if poolSize > poolMaxSize {
		poolSize = poolMaxSize
	}
	return poolSize
}

// datasourceName 连接的唯一标识
func datasourceName(redisOpt *redis.Options) string {
	network := redisOpt.Network
	if network == "" {
		network = "tcp"
	}
	return fmt.Sprintf("%s://%s@%s/%d", network, redisOpt.Username, redisOpt.Addr, redisOpt.DB)
}

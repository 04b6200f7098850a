package redisclient

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/magic-lib/go-plat-startupcfg/startupcfg"
	"github.com/magic-lib/go-plat-utils/conv"
	"github.com/magic-lib/go-plat-utils/syncx"
	red "github.com/redis/go-redis/v9"
)

const (
	// ClusterType means redis cluster.
	ClusterType = "cluster"
	// NodeType means redis node.
	NodeType = "node"

	addrSep    = ","
	maxRetries = 3
	idleConns  = 8
)

var (
	clientManager = syncx.NewResourceManager()
	// nodePoolSize is default pool size for node type of redis.
	nodePoolSize = 10 * runtime.GOMAXPROCS(0)

	clusterManager = syncx.NewResourceManager()

	// ErrNilConfig 未传入redis配置
	ErrNilConfig = errors.New("redis config is nil")
)

func getClient(r *startupcfg.RedisConfig) (*red.Client, error) {
	val, err := clientManager.GetResource(r.DatasourceName(), func() (io.Closer, error) {
		db, _ := conv.Int64(r.DatabaseName())
		store := red.NewClient(&red.Options{
			Addr:         r.ServerAddress(),
			Username:     r.User(),
			Password:     r.Password(),
			DB:           int(db),
			MaxRetries:   maxRetries,
			PoolSize:     nodePoolSize,
			MinIdleConns: idleConns,
			TLSConfig:    tlsConfig(r),
		})

		return store, nil
	})
	if err != nil {
		return nil, err
	}

	return val.(*red.Client), nil
}

func getCluster(r *startupcfg.RedisConfig) (*red.ClusterClient, error) {
	val, err := clusterManager.GetResource(r.DatasourceName(), func() (io.Closer, error) {
		store := red.NewClusterClient(&red.ClusterOptions{
			Addrs:        splitClusterAddrs(r.ServerAddress()),
			Username:     r.User(),
			Password:     r.Password(),
			MaxRetries:   maxRetries,
			MinIdleConns: idleConns,
			TLSConfig:    tlsConfig(r),
		})

		return store, nil
	})
	if err != nil {
		return nil, err
	}

	return val.(*red.ClusterClient), nil
}

func tlsConfig(r *startupcfg.RedisConfig) *tls.Config {
	if !r.TLS {
		return nil
	}
	return &tls.Config{
		InsecureSkipVerify: true,
	}
}

func splitClusterAddrs(addr string) []string {
	addrs := strings.Split(addr, addrSep)
	unique := make(map[string]struct{})
	ret := make([]string, 0, len(addrs))
	for _, each := range addrs {
		each = strings.TrimSpace(each)
		if each == "" {
			continue
		}
		if _, ok := unique[each]; ok {
			continue
		}
		unique[each] = struct{}{}
		ret = append(ret, each)
	}

	return ret
}

// Get 按配置类型返回单节点或集群客户端，同一个数据源只创建一次
func Get(r *startupcfg.RedisConfig) (red.UniversalClient, error) {
	if r == nil {
		return nil, ErrNilConfig
	}
	switch r.Type {
	case ClusterType:
		return getCluster(r)
	case NodeType, "":
		return getClient(r)
	default:
		return nil, fmt.Errorf("redis type '%s' is not supported", r.Type)
	}
}

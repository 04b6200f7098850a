package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/magic-lib/go-plat-redisbloom/store"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:          "redisbloom",
	Short:        "Redis-backed Bloom filter CLI",
	Long:         "CLI for inserting, querying and inspecting a Bloom filter stored in Redis.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ~/.config/redisbloom/config.yaml)")
	flags.String("addr", "127.0.0.1:6379", "redis server address")
	flags.String("password", "", "redis password")
	flags.Int("db", 0, "redis database")
	flags.String("namespace", "redis", "redis key holding the bit array")
	flags.Int64("size", 100, "number of bits (m)")
	flags.Int("hashes", 4, "number of hash functions (k)")
	flags.Int64("seed", 0, "hash seed, every process sharing a filter must use the same one")
	flags.Bool("counting", false, "maintain the insert counter")
	flags.Duration("expire", 0, "expire the filter this long after its first counted insert")
	flags.Bool("eager", false, "allocate the whole bit array up front")

	for _, name := range []string{"addr", "password", "db", "namespace", "size", "hashes", "seed", "counting", "expire", "eager"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("REDISBLOOM")
	viper.AutomaticEnv()

	viper.ReadInConfig()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "redisbloom")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "redisbloom")
	}
	return ".redisbloom"
}

func filterOption() *filter.Option {
	opt := &filter.Option{
		Size:      viper.GetInt64("size"),
		Hashes:    viper.GetInt("hashes"),
		Namespace: viper.GetString("namespace"),
		Counting:  viper.GetBool("counting"),
		Expire:    viper.GetDuration("expire"),
		Eager:     viper.GetBool("eager"),
	}
	return opt.WithSeed(viper.GetInt64("seed"))
}

// openFilter 调用方负责关闭返回的客户端
func openFilter(ctx context.Context) (*filter.RedisFilter, *redis.Client, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     viper.GetString("addr"),
		Password: viper.GetString("password"),
		DB:       viper.GetInt("db"),
	})
	f, err := filter.New(ctx, store.NewRedisStore(cli), filterOption())
	if err != nil {
		_ = cli.Close()
		return nil, nil, err
	}
	return f, cli, nil
}

// withFilter 打开过滤器执行fn，之后关闭连接
func withFilter(fn func(ctx context.Context, f *filter.RedisFilter) error) (err error) {
	ctx := context.Background()
	f, cli, err := openFilter(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cli.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, f)
}

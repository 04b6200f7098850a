package cmd

import (
	"context"
	"fmt"

	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show filter parameters and usage",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	return withFilter(func(ctx context.Context, f *filter.RedisFilter) error {
		size, err := f.StorageSize(ctx)
		if err != nil {
			return err
		}
		count, err := f.InsertCount(ctx)
		if err != nil {
			return err
		}
		fmt.Print(f.Describe())
		fmt.Printf("Storage size (bytes)        : %d\n", size)
		fmt.Printf("Insert count                : %d\n", count)
		return nil
	})
}

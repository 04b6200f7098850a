package cmd

import (
	"context"
	"fmt"

	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/spf13/cobra"
)

var insertCmd = &cobra.Command{
	Use:   "insert <key>...",
	Short: "Insert keys",
	Long:  "Insert every key into the filter, one batched request per key.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInsert,
}

func init() {
	rootCmd.AddCommand(insertCmd)
}

func runInsert(cmd *cobra.Command, args []string) error {
	return withFilter(func(ctx context.Context, f *filter.RedisFilter) error {
		for _, key := range args {
			if err := f.Insert(ctx, key); err != nil {
				return fmt.Errorf("insert %q failed: %w", key, err)
			}
		}
		return nil
	})
}

package cmd

import (
	"context"
	"fmt"

	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/spf13/cobra"
)

var includesCmd = &cobra.Command{
	Use:   "includes <key>...",
	Short: "Check whether keys may be present",
	Long:  "Print true when every key may be present, false when at least one is definitely absent.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIncludes,
}

func init() {
	rootCmd.AddCommand(includesCmd)
}

func runIncludes(cmd *cobra.Command, args []string) error {
	return withFilter(func(ctx context.Context, f *filter.RedisFilter) error {
		ok, err := f.Includes(ctx, args...)
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	})
}

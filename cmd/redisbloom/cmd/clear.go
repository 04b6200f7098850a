package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the bit array",
	Long:  "Reset the bit array to empty. The insert counter and the expiration are kept.",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	return withFilter(func(ctx context.Context, f *filter.RedisFilter) error {
		if err := f.Clear(ctx); err != nil {
			return fmt.Errorf("clear failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Cleared %s\n", f.Option().Namespace)
		return nil
	})
}

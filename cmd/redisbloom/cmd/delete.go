package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <key>...",
	Short: "Clear the bits of keys",
	Long: "Clear every bit the keys hash to. Bits are shared between keys, so other " +
		"inserted keys may start reporting absent afterwards.",
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withFilter(func(ctx context.Context, f *filter.RedisFilter) error {
		for _, key := range args {
			if err := f.Delete(ctx, key); err != nil {
				return fmt.Errorf("delete %q failed: %w", key, err)
			}
		}
		fmt.Fprintf(os.Stderr, "Deleted %d keys, other keys sharing their bits may now read as absent.\n", len(args))
		return nil
	})
}

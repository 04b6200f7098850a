package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/magic-lib/go-plat-redisbloom/filter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Insert keys read line by line",
	Long:  "Insert newline separated keys from a file, or from stdin when no file is given. Blank lines are skipped.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().Int("workers", 8, "concurrent inserts")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if len(args) > 0 {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}
	workers, _ := cmd.Flags().GetInt("workers")

	return withFilter(func(ctx context.Context, f *filter.RedisFilter) error {
		n, err := loadKeys(ctx, f, in, workers)
		fmt.Fprintf(os.Stderr, "Inserted %d keys\n", n)
		return err
	})
}

// loadKeys 并发插入，任一插入失败即停止读取
func loadKeys(ctx context.Context, f *filter.RedisFilter, in io.Reader, workers int) (int64, error) {
	if workers <= 0 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var inserted atomic.Int64
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		key := strings.TrimSpace(scanner.Text())
		if key == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := f.Insert(ctx, key); err != nil {
				return fmt.Errorf("insert %q failed: %w", key, err)
			}
			inserted.Add(1)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = scanner.Err()
	}
	return inserted.Load(), err
}

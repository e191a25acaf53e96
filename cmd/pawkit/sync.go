package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var syncWatch bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Drain the pending write queue against the sync server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if a.engine == nil {
			return fmt.Errorf("sync is disabled: set sync.base_url in %s and store a token with 'pawkit token set'", configPath)
		}

		if syncWatch {
			interval := time.Duration(a.cfg.Sync.IntervalSec) * time.Second
			a.logger.Info().Dur("interval", interval).Msg("watching for changes")
			a.engine.Run(ctx, interval)
			return nil
		}

		stats, err := a.engine.RunPass(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("synced %d, conflicts %d, still queued %d\n",
			stats.Synced, stats.Conflicts, stats.Queued)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVarP(&syncWatch, "watch", "w", false, "keep running and sync on an interval")
	rootCmd.AddCommand(syncCmd)
}

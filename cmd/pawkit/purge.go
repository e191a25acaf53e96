package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var purgeOlderThanDays int

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Hard-delete trashed items older than the cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		cutoff := time.Now().UTC().AddDate(0, 0, -purgeOlderThanDays)
		n, err := a.data.PurgeTrash(ctx, cutoff)
		if err != nil {
			return err
		}
		fmt.Printf("purged %d items\n", n)
		return nil
	},
}

func init() {
	purgeCmd.Flags().IntVar(&purgeOlderThanDays, "older-than", 30, "age in days before trash is purged")
	rootCmd.AddCommand(purgeCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate cards, keeping server-confirmed and oldest copies",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		before := len(a.data.Cards())
		kept, err := a.data.DedupeCards(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("kept %d cards, removed %d duplicates\n", len(kept), before-len(kept))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dedupeCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var takeoverCmd = &cobra.Command{
	Use:   "takeover",
	Short: "Claim the write lease for this session",
	Long: `Only one session writes at a time. Takeover moves the write lease to
this session; the previous holder's next write will be rejected until
it takes the lease back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		holder, err := a.lease.CurrentHolder(ctx)
		if err != nil {
			return err
		}
		if holder != nil && holder.SessionID != a.lease.SessionID() {
			fmt.Printf("taking over from %s\n", holder.Name)
		}

		if err := a.lease.Takeover(ctx); err != nil {
			return err
		}
		fmt.Println("this session is now the active writer")
		return nil
	},
}

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Release the write lease if this session holds it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.lease.Release(ctx); err != nil {
			return err
		}
		fmt.Println("write lease released")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(takeoverCmd)
	rootCmd.AddCommand(releaseCmd)
}

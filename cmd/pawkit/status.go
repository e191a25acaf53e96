package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workspace, lease holder, queue depth and notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		fmt.Printf("workspace: %s\n", a.cfg.WorkspaceID)
		fmt.Printf("database:  %s\n", a.cfg.DBPath)

		holder, err := a.lease.CurrentHolder(ctx)
		if err != nil {
			return err
		}
		switch {
		case holder == nil:
			fmt.Println("lease:     free")
		case holder.SessionID == a.lease.SessionID():
			fmt.Printf("lease:     held by this session (%s)\n", holder.Name)
		default:
			fmt.Printf("lease:     held by %s\n", holder.Name)
		}

		ops, err := a.store.PendingOps(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queued:    %d pending ops\n", len(ops))

		notes, err := a.data.UnreadNotifications(ctx)
		if err != nil {
			return err
		}
		for _, n := range notes {
			fmt.Printf("  [%s] %s\n", n.Kind, n.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

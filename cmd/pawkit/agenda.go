package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawkit/pawkit/internal/model"
)

var agendaDays int

var agendaCmd = &cobra.Command{
	Use:   "agenda [start-date]",
	Short: "List event occurrences, recurring rules expanded",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		start := time.Now()
		if len(args) == 1 {
			parsed, err := time.Parse(model.DateLayout, args[0])
			if err != nil {
				return fmt.Errorf("bad start date %q, want YYYY-MM-DD", args[0])
			}
			start = parsed
		}
		end := start.AddDate(0, 0, agendaDays-1)

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		instances := a.data.Agenda(
			start.Format(model.DateLayout),
			end.Format(model.DateLayout),
		)
		if len(instances) == 0 {
			fmt.Println("no events in range")
			return nil
		}

		for _, inst := range instances {
			marker := " "
			if !inst.IsOriginal {
				marker = "↻"
			}
			when := inst.InstanceDate
			if inst.Event.StartTime != "" {
				when += " " + inst.Event.StartTime
			}
			fmt.Printf("%s %s  %s\n", marker, when, inst.Event.Title)
		}
		return nil
	},
}

func init() {
	agendaCmd.Flags().IntVarP(&agendaDays, "days", "d", 7, "number of days to show")
	rootCmd.AddCommand(agendaCmd)
}

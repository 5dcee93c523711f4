package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"lto-cli/api"
	"lto-cli/schedule"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func availabilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show bookable dates and time slots",
	}

	cmd.AddCommand(availabilityCalendarCmd())
	cmd.AddCommand(availabilitySlotsCmd())
	return cmd
}

type CalendarOutput struct {
	Start          string          `json:"start"`
	End            string          `json:"end"`
	Availability   map[string]int  `json:"availability"`
	Selectable     []string        `json:"selectable"`
	TodayOverrides []api.BlockDate `json:"today_overrides,omitempty"`
}

func availabilityCalendarCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the rolling month of bookable dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireLogin(); err != nil {
				return err
			}

			now := time.Now()
			start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			end := start.AddDate(0, 1, 0)
			if month != "" {
				first, err := time.ParseInLocation("2006-01", month, now.Location())
				if err != nil {
					return fmt.Errorf("invalid --month %q (expected YYYY-MM)", month)
				}
				start = first
				end = first.AddDate(0, 1, -1)
			}

			ctx := context.Background()
			engine := schedule.NewEngine(client, logger)

			// The month window and today's override list are independent
			// reads, so they run concurrently.
			type blocksResult struct {
				blocks []api.BlockDate
				err    error
			}
			todayStr := now.Format(schedule.DateLayout)
			todayCh := make(chan blocksResult, 1)
			go func() {
				blocks, err := client.GetBlockDates(ctx, todayStr)
				todayCh <- blocksResult{blocks: blocks, err: err}
			}()

			loadErr := engine.LoadAvailability(ctx, start, end)
			todayRes := <-todayCh
			if todayRes.err != nil {
				logger.Warn("today's block list unavailable", zap.Error(todayRes.err))
			}

			availability := engine.Availability()
			selectable := []string{}
			for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
				if engine.IsDateSelectable(day) {
					selectable = append(selectable, day.Format(schedule.DateLayout))
				}
			}
			sort.Strings(selectable)

			if outputJSON {
				return writeJSON(CalendarOutput{
					Start:          start.Format(schedule.DateLayout),
					End:            end.Format(schedule.DateLayout),
					Availability:   availability,
					Selectable:     selectable,
					TodayOverrides: todayRes.blocks,
				})
			}

			renderCalendar(engine, start, end)
			if loadErr != nil {
				fmt.Println("\nSome dates could not be loaded and are shown as unavailable.")
			}
			if len(todayRes.blocks) > 0 {
				fmt.Printf("\nCapacity overrides in effect today (%s):\n", todayStr)
				for _, block := range todayRes.blocks {
					fmt.Printf("  %s: %d slots\n", block.Time, block.MaxSlots)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Calendar month (YYYY-MM, default: the rolling month from today)")
	return cmd
}

func renderCalendar(engine *schedule.Engine, start, end time.Time) {
	writer := tabwriter.NewWriter(os.Stdout, 2, 2, 1, ' ', tabwriter.AlignRight)

	month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	for !month.After(end) {
		fmt.Fprintf(writer, "%s\t\t\t\t\t\t\t\n", strings.ToUpper(month.Format("January 2006")))
		fmt.Fprintln(writer, "SUN\tMON\tTUE\tWED\tTHU\tFRI\tSAT\t")

		day := month
		for i := 0; i < int(day.Weekday()); i++ {
			fmt.Fprint(writer, "\t")
		}
		for day.Month() == month.Month() {
			cell := fmt.Sprintf("%d", day.Day())
			if engine.IsDateSelectable(day) {
				cell += "*"
			}
			fmt.Fprintf(writer, "%s\t", cell)
			if day.Weekday() == time.Saturday {
				fmt.Fprintln(writer)
			}
			day = day.AddDate(0, 0, 1)
		}
		if day.Weekday() != time.Sunday {
			fmt.Fprintln(writer)
		}
		fmt.Fprintln(writer)

		month = month.AddDate(0, 1, 0)
	}
	writer.Flush()
	fmt.Println("Dates marked * can be booked (7-day lead time applies).")
}

type SlotsOutput struct {
	Date       string                  `json:"date"`
	Selectable bool                    `json:"selectable"`
	Slots      []schedule.SlotCapacity `json:"slots"`
}

func availabilitySlotsCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Show slot capacities for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				return fmt.Errorf("--date is required")
			}
			if _, err := requireLogin(); err != nil {
				return err
			}

			day, err := parseDateInput(date)
			if err != nil {
				return err
			}

			ctx := context.Background()
			engine := schedule.NewEngine(client, logger)

			if err := engine.LoadAvailability(ctx, day, day); err != nil {
				logger.Warn("availability load incomplete", zap.Error(err))
			}
			selectable := engine.IsDateSelectable(day)

			if err := engine.SelectDate(ctx, day); err != nil {
				fmt.Fprintln(os.Stderr, "Could not load slot capacities; all slots shown as unavailable.")
			}
			slots := engine.Slots()

			if outputJSON {
				return writeJSON(SlotsOutput{
					Date:       day.Format(schedule.DateLayout),
					Selectable: selectable,
					Slots:      slots,
				})
			}

			fmt.Printf("Date: %s\n", day.Format(schedule.DateLayout))
			if !selectable {
				fmt.Println("This date cannot be booked (past, inside the 7-day lead time, or fully blocked).")
			}

			if outputCompact {
				for i, slot := range slots {
					if i > 0 {
						fmt.Print(" ")
					}
					fmt.Printf("%s:%d", slot.Slot, slot.Capacity)
				}
				fmt.Println()
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			fmt.Fprintln(writer, "SLOT\tAVAILABLE")
			for _, slot := range slots {
				label := fmt.Sprintf("%d", slot.Capacity)
				if slot.Capacity <= 0 {
					label = "full"
				}
				fmt.Fprintf(writer, "%s\t%s\n", slot.Slot, label)
			}
			return writer.Flush()
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	return cmd
}

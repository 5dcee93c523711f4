package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"lto-cli/api"
	"lto-cli/schedule"
	"lto-cli/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "Manage your appointments",
	}

	cmd.AddCommand(appointmentsListCmd())
	cmd.AddCommand(appointmentsViewCmd())
	cmd.AddCommand(appointmentsCancelCmd())
	cmd.AddCommand(appointmentsRescheduleCmd())
	cmd.AddCommand(appointmentsTodayCmd())
	cmd.AddCommand(appointmentsCountsCmd())
	cmd.AddCommand(appointmentsSyncCmd())
	return cmd
}

func appointmentsListCmd() *cobra.Command {
	var local bool
	var status string
	var from string
	var to string
	var upcoming bool
	var past bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				filter := storage.AppointmentFilter{
					Status:   status,
					From:     from,
					To:       to,
					Upcoming: upcoming,
					Past:     past,
					NowDate:  time.Now().Format(schedule.DateLayout),
				}
				return listLocalAppointments(filter)
			}
			if from != "" || to != "" || upcoming || past {
				return fmt.Errorf("date filters only apply with --local")
			}

			if _, err := requireLogin(); err != nil {
				return err
			}
			appointments, err := client.GetClientAppointments(context.Background())
			if err != nil {
				return err
			}
			if status != "" {
				filtered := appointments[:0]
				for _, appt := range appointments {
					if appt.Status == status {
						filtered = append(filtered, appt)
					}
				}
				appointments = filtered
			}
			sort.Slice(appointments, func(i, j int) bool {
				if appointments[i].AppointmentDate == appointments[j].AppointmentDate {
					return appointments[i].AppointmentTime < appointments[j].AppointmentTime
				}
				return appointments[i].AppointmentDate < appointments[j].AppointmentDate
			})

			if outputJSON {
				return writeJSON(appointments)
			}
			if len(appointments) == 0 {
				fmt.Println("No appointments found.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			if !outputCompact {
				fmt.Fprintln(writer, "REF\tDATE\tTIME\tTRANSACTION\tSTATUS")
			}
			for _, appt := range appointments {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
					appt.Reference(), appt.AppointmentDate, appt.AppointmentTime, appt.TypeOfTransaction, appt.Status)
			}
			return writer.Flush()
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "List the locally saved history instead of asking the service")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, approved, rejected, cancelled)")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date (YYYY-MM-DD, local history only)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date (YYYY-MM-DD, local history only)")
	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "Only dates from today on (local history only)")
	cmd.Flags().BoolVar(&past, "past", false, "Only dates before today (local history only)")
	return cmd
}

func listLocalAppointments(filter storage.AppointmentFilter) error {
	db, err := storage.OpenAppointmentsDB()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := storage.ListAppointments(db, filter)
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(records)
	}
	if len(records) == 0 {
		fmt.Println("No appointments in the local history.")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	if !outputCompact {
		fmt.Fprintln(writer, "REF\tDATE\tTIME\tTRANSACTION\tSTATUS")
	}
	for _, record := range records {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			shortRef(record.ID), record.Date, record.Time, record.Transaction, record.Status)
	}
	return writer.Flush()
}

func appointmentsViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <id>",
		Short: "Show one appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireLogin(); err != nil {
				return err
			}
			appt, err := client.ReviewAppointment(context.Background(), args[0])
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(appt)
			}

			fmt.Printf("Reference: %s\n", appt.Reference())
			fmt.Printf("Transaction: %s\n", appt.TypeOfTransaction)
			fmt.Printf("Schedule: %s at %s\n", appt.AppointmentDate, appt.AppointmentTime)
			fmt.Printf("Status: %s\n", appt.Status)
			if appt.PersonalInfo.FullName() != "" {
				fmt.Printf("Applicant: %s\n", appt.PersonalInfo.FullName())
			}
			for _, note := range appt.Notes {
				fmt.Printf("Note: %s\n", note.Note)
			}
			return nil
		},
	}

	return cmd
}

func appointmentsCancelCmd() *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireLogin(); err != nil {
				return err
			}
			if err := client.CancelAppointment(context.Background(), args[0]); err != nil {
				return err
			}

			db, err := storage.OpenAppointmentsDB()
			if err == nil {
				defer db.Close()
				if purge {
					_, _ = storage.RemoveAppointment(db, args[0])
				} else {
					_, _ = storage.SetAppointmentStatus(db, args[0], api.StatusCancelled)
				}
			}

			fmt.Printf("Cancelled %s.\n", shortRef(args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "Drop the record from the local history instead of marking it cancelled")
	return cmd
}

func appointmentsRescheduleCmd() *cobra.Command {
	var date string
	var timeSlot string

	cmd := &cobra.Command{
		Use:   "reschedule <id>",
		Short: "Move an appointment to a new date and slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" || timeSlot == "" {
				return fmt.Errorf("--date and --time are required")
			}
			if _, err := requireLogin(); err != nil {
				return err
			}

			day, err := parseDateInput(date)
			if err != nil {
				return err
			}

			// The new schedule goes through the same lead-time and capacity
			// checks as a fresh booking.
			ctx := context.Background()
			engine := schedule.NewEngine(client, logger)
			if err := engine.LoadAvailability(ctx, day, day); err != nil {
				logger.Warn("availability load incomplete", zap.Error(err))
			}
			if !engine.IsDateSelectable(day) {
				return fmt.Errorf("%s cannot be booked: dates must be more than %d days out, on a day with capacity",
					day.Format(schedule.DateLayout), schedule.LeadDays)
			}
			if err := engine.SelectDate(ctx, day); err != nil {
				return err
			}
			if err := engine.SelectSlot(timeSlot); err != nil {
				return err
			}
			selection, err := engine.Commit()
			if err != nil {
				return err
			}

			if err := client.RescheduleAppointment(ctx, args[0], selection.Date, selection.Time); err != nil {
				return err
			}

			db, err := storage.OpenAppointmentsDB()
			if err == nil {
				defer db.Close()
				_ = storage.UpsertAppointment(db, storage.AppointmentRecord{
					ID:       args[0],
					Date:     selection.Date,
					Time:     selection.Time,
					Status:   api.StatusPending,
					BookedAt: time.Now().UTC().Format(time.RFC3339),
					Source:   "cli_rescheduled",
				})
			}

			fmt.Printf("Rescheduled %s to %s at %s.\n", shortRef(args[0]), selection.Date, selection.Time)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "New date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&timeSlot, "time", "", "New time slot (e.g. 09-10)")
	return cmd
}

func appointmentsTodayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "List your appointments for today",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireLogin(); err != nil {
				return err
			}
			appointments, err := client.GetClientTodaysAppointments(context.Background())
			if err != nil {
				return err
			}
			return renderAppointmentTable(appointments)
		},
	}

	return cmd
}

func appointmentsCountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show your appointment totals by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireLogin(); err != nil {
				return err
			}
			counts, err := client.GetClientAppointmentCounts(context.Background())
			if err != nil {
				return err
			}
			return renderCounts(counts)
		},
	}

	return cmd
}

// appointmentsSyncCmd pulls the service-side list into the local history so
// `list --local` works offline.
func appointmentsSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local history from the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireLogin(); err != nil {
				return err
			}
			appointments, err := client.GetClientAppointments(context.Background())
			if err != nil {
				return err
			}

			db, err := storage.OpenAppointmentsDB()
			if err != nil {
				return err
			}
			defer db.Close()

			for _, appt := range appointments {
				record := storage.AppointmentRecord{
					ID:             appt.ID,
					Transaction:    appt.TypeOfTransaction,
					Date:           appt.AppointmentDate,
					Time:           appt.AppointmentTime,
					Status:         appt.Status,
					ApplicantName:  appt.PersonalInfo.FullName(),
					ApplicantEmail: appt.PersonalInfo.Email,
					BookedAt:       appt.CreatedAt,
					Source:         "synced",
				}
				if err := storage.UpsertAppointment(db, record); err != nil {
					return err
				}
			}

			fmt.Printf("Synced %d appointments.\n", len(appointments))
			return nil
		},
	}

	return cmd
}

func renderAppointmentTable(appointments []api.Appointment) error {
	if outputJSON {
		return writeJSON(appointments)
	}
	if len(appointments) == 0 {
		fmt.Println("No appointments found.")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	if !outputCompact {
		fmt.Fprintln(writer, "REF\tDATE\tTIME\tTRANSACTION\tSTATUS")
	}
	for _, appt := range appointments {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			appt.Reference(), appt.AppointmentDate, appt.AppointmentTime, appt.TypeOfTransaction, appt.Status)
	}
	return writer.Flush()
}

func renderCounts(counts api.AppointmentCounts) error {
	if outputJSON {
		return writeJSON(counts)
	}
	writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	fmt.Fprintf(writer, "Pending\t%d\n", counts.Pending)
	fmt.Fprintf(writer, "Approved\t%d\n", counts.Approved)
	fmt.Fprintf(writer, "Rejected\t%d\n", counts.Rejected)
	fmt.Fprintf(writer, "Cancelled\t%d\n", counts.Cancelled)
	return writer.Flush()
}

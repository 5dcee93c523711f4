package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"lto-cli/api"
	"lto-cli/schedule"

	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Staff operations",
	}

	cmd.AddCommand(adminAppointmentsCmd())
	cmd.AddCommand(adminStatusCmd("approve", api.StatusApproved))
	cmd.AddCommand(adminStatusCmd("reject", api.StatusRejected))
	cmd.AddCommand(adminNoteCmd())
	cmd.AddCommand(adminViewCmd())
	cmd.AddCommand(adminClientsCmd())
	cmd.AddCommand(adminClientUpdateCmd())
	cmd.AddCommand(adminCountsCmd())
	cmd.AddCommand(adminTodayCmd())
	cmd.AddCommand(adminBlockDateCmd())
	return cmd
}

func adminAppointmentsCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "List all appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			appointments, err := client.GetAdminAppointments(context.Background())
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
			return renderAppointmentTable(appointments)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, approved, rejected, cancelled)")
	return cmd
}

func adminStatusCmd(use, status string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Mark a pending appointment %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			if err := client.SetAppointmentStatus(context.Background(), args[0], status); err != nil {
				return err
			}
			fmt.Printf("Appointment %s is now %s.\n", shortRef(args[0]), status)
			return nil
		},
	}

	return cmd
}

func adminNoteCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "note <id>",
		Short: "Attach a note to an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("--message is required")
			}
			if _, err := requireAdmin(); err != nil {
				return err
			}
			if err := client.AddAppointmentNote(context.Background(), args[0], message); err != nil {
				return err
			}
			fmt.Printf("Note added to %s.\n", shortRef(args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "Note text")
	return cmd
}

func adminViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <id>",
		Short: "Show one appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			appt, err := client.ViewAppointment(context.Background(), args[0])
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

func adminClientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List registered clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			users, err := client.GetAllClients(context.Background())
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(users)
			}
			if len(users) == 0 {
				fmt.Println("No clients found.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			if !outputCompact {
				fmt.Fprintln(writer, "NAME\tEMAIL\tCONTACT\tLTMS")
			}
			for _, user := range users {
				name := user.FirstName
				if user.LastName != "" {
					name += " " + user.LastName
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", name, user.Email, user.ContactNumber, user.LTMSNumber)
			}
			return writer.Flush()
		},
	}

	return cmd
}

func adminClientUpdateCmd() *cobra.Command {
	var email string
	var birthdate string
	var ltms string

	cmd := &cobra.Command{
		Use:   "client-update <id>",
		Short: "Correct a client's contact details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update api.ClientUpdate
			if cmd.Flags().Changed("email") {
				update.Email = &email
			}
			if cmd.Flags().Changed("birthdate") {
				update.Birthdate = &birthdate
			}
			if cmd.Flags().Changed("ltms-number") {
				update.LTMSNumber = &ltms
			}
			if update.Email == nil && update.Birthdate == nil && update.LTMSNumber == nil {
				return fmt.Errorf("nothing to update: set --email, --birthdate, or --ltms-number")
			}
			if _, err := requireAdmin(); err != nil {
				return err
			}

			user, err := client.UpdateClientInfo(context.Background(), args[0], update)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(user)
			}
			fmt.Printf("Updated %s %s (%s).\n", user.FirstName, user.LastName, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringVar(&birthdate, "birthdate", "", "New birthdate (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ltms, "ltms-number", "", "New LTMS number")
	return cmd
}

func adminCountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show appointment totals by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			counts, err := client.GetAppointmentCounts(context.Background())
			if err != nil {
				return err
			}
			return renderCounts(counts)
		},
	}

	return cmd
}

func adminTodayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "List today's appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			appointments, err := client.GetTodaysAppointments(context.Background())
			if err != nil {
				return err
			}
			return renderAppointmentTable(appointments)
		},
	}

	return cmd
}

func adminBlockDateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block-date",
		Short: "Manage per-slot capacity overrides",
	}

	cmd.AddCommand(adminBlockDateSetCmd())
	cmd.AddCommand(adminBlockDateListCmd())
	return cmd
}

func adminBlockDateSetCmd() *cobra.Command {
	var date string
	var timeSlot string
	var maxSlots int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Override the capacity of one (date, slot) pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" || timeSlot == "" {
				return fmt.Errorf("--date and --time are required")
			}
			if _, err := requireAdmin(); err != nil {
				return err
			}

			day, err := parseDateInput(date)
			if err != nil {
				return err
			}
			slot, ok := schedule.CanonicalSlot(timeSlot)
			if !ok {
				return fmt.Errorf("unknown time slot %q", timeSlot)
			}

			if err := client.SaveBlockDate(context.Background(), day.Format(schedule.DateLayout), slot, maxSlots); err != nil {
				return err
			}
			fmt.Printf("Capacity for %s %s set to %d.\n", day.Format(schedule.DateLayout), slot, maxSlots)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&timeSlot, "time", "", "Time slot (e.g. 09-10)")
	cmd.Flags().IntVar(&maxSlots, "max-slots", 0, "Capacity for the slot (0-6; 0 blocks it)")
	return cmd
}

func adminBlockDateListCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the overrides for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				return fmt.Errorf("--date is required")
			}
			if _, err := requireAdmin(); err != nil {
				return err
			}

			day, err := parseDateInput(date)
			if err != nil {
				return err
			}
			blocks, err := client.GetBlockDates(context.Background(), day.Format(schedule.DateLayout))
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(blocks)
			}
			if len(blocks) == 0 {
				fmt.Println("No overrides; the default capacity rule applies.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			if !outputCompact {
				fmt.Fprintln(writer, "DATE\tSLOT\tMAX")
			}
			for _, block := range blocks {
				slot := block.Time
				if canon, ok := schedule.CanonicalSlot(block.Time); ok {
					slot = canon
				}
				fmt.Fprintf(writer, "%s\t%s\t%d\n", block.Date, slot, block.MaxSlots)
			}
			return writer.Flush()
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	return cmd
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"lto-cli/api"
	"lto-cli/schedule"
	"lto-cli/storage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func bookCmd() *cobra.Command {
	var date string
	var timeSlot string
	var transaction string
	var docs []string

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		Long: `Book an appointment in three steps: pick a date and time slot,
review your personal information, then choose the transaction type and
attach the required documents. Flags skip the matching prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := requireLogin()
			if err != nil {
				return err
			}

			ctx := context.Background()
			engine := schedule.NewEngine(client, logger)

			// Step 1: date and slot.
			var day time.Time
			if date != "" {
				day, err = parseDateInput(date)
				if err != nil {
					return err
				}
				if err := engine.LoadAvailability(ctx, day, day); err != nil {
					logger.Warn("availability load incomplete", zap.Error(err))
				}
			} else {
				fmt.Println("Step 1 of 3: appointment date")
				if err := engine.LoadMonth(ctx); err != nil {
					logger.Warn("availability load incomplete", zap.Error(err))
				}
				now := time.Now()
				start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
				renderCalendar(engine, start, start.AddDate(0, 1, 0))

				value, err := promptLine("Date (YYYY-MM-DD): ")
				if err != nil {
					return err
				}
				day, err = parseDateInput(value)
				if err != nil {
					return err
				}
			}

			if !engine.IsDateSelectable(day) {
				return fmt.Errorf("%s cannot be booked: dates must be more than %d days out, on a day with capacity",
					day.Format(schedule.DateLayout), schedule.LeadDays)
			}
			if err := engine.SelectDate(ctx, day); err != nil {
				return err
			}

			if timeSlot == "" {
				writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
				fmt.Fprintln(writer, "SLOT\tAVAILABLE")
				for _, slot := range engine.Slots() {
					label := fmt.Sprintf("%d", slot.Capacity)
					if slot.Capacity <= 0 {
						label = "full"
					}
					fmt.Fprintf(writer, "%s\t%s\n", slot.Slot, label)
				}
				writer.Flush()

				timeSlot, err = promptLine("Time slot: ")
				if err != nil {
					return err
				}
			}
			if err := engine.SelectSlot(timeSlot); err != nil {
				return err
			}

			selection, err := engine.Commit()
			if err != nil {
				return err
			}
			fmt.Printf("Selected: %s at %s\n", selection.Date, selection.Time)

			// Step 2: personal information review.
			fmt.Println("\nStep 2 of 3: personal information")
			info, err := client.ClientInfo(ctx)
			if err != nil {
				return err
			}
			if info.ID == "" {
				info.ID = creds.UserID
			}
			info, err = completePersonalInfo(info, date == "")
			if err != nil {
				return err
			}
			printPersonalInfo(info)

			// Step 3: transaction type and documents.
			fmt.Println("\nStep 3 of 3: type of transaction")
			if transaction == "" {
				transaction = cfg.DefaultTransaction
			}
			if transaction == "" {
				for i, name := range transactionTypes() {
					fmt.Printf("  %d. %s\n", i+1, name)
				}
				transaction, err = promptLine("Transaction: ")
				if err != nil {
					return err
				}
			}
			name, reqs, err := resolveTransaction(transaction)
			if err != nil {
				return err
			}

			documents, err := parseDocuments(docs, reqs)
			if err != nil {
				return err
			}
			for _, req := range reqs {
				if _, ok := documents[req.Key]; !ok {
					fmt.Printf("Note: no document attached for %q (%s); the office may ask for it on site.\n", req.Key, req.Label)
				}
			}

			request := api.CreateAppointmentRequest{
				ClientID:          info.ID,
				AppointmentID:     uuid.NewString(),
				TypeOfTransaction: name,
				Date:              selection.Date,
				Time:              selection.Time,
				PersonalInfo:      info,
				Documents:         documents,
			}
			appointmentID, err := client.CreateAppointment(ctx, request)
			if err != nil {
				return err
			}

			record := storage.AppointmentRecord{
				ID:             appointmentID,
				Transaction:    name,
				Date:           selection.Date,
				Time:           selection.Time,
				Status:         api.StatusPending,
				ApplicantName:  info.FullName(),
				ApplicantEmail: info.Email,
				BookedAt:       time.Now().UTC().Format(time.RFC3339),
				Source:         "cli_booked",
			}
			db, err := storage.OpenAppointmentsDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if _, err := storage.AddAppointmentIfNotExists(db, record); err != nil {
				return err
			}

			fmt.Printf("\nBooked: %s on %s at %s\n", name, selection.Date, selection.Time)
			fmt.Printf("Reference: %s (pending approval)\n", shortRef(appointmentID))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&timeSlot, "time", "", "Time slot (e.g. 09-10)")
	cmd.Flags().StringVar(&transaction, "transaction", "", "Type of transaction")
	cmd.Flags().StringArrayVar(&docs, "doc", nil, "Attach a document as key=path (repeatable)")
	return cmd
}

// completePersonalInfo prompts for any required field the account record is
// missing. The middle name is the only optional one. In non-interactive runs
// missing fields are an error instead.
func completePersonalInfo(info api.PersonalInfo, interactive bool) (api.PersonalInfo, error) {
	required := []struct {
		label string
		value *string
	}{
		{"First name", &info.FirstName},
		{"Last name", &info.LastName},
		{"Contact number", &info.ContactNumber},
		{"Email", &info.Email},
		{"Birthdate (YYYY-MM-DD)", &info.Birthdate},
		{"LTMS number", &info.LTMSNumber},
	}

	missing := []string{}
	for _, field := range required {
		if *field.value != "" {
			continue
		}
		if !interactive {
			missing = append(missing, field.label)
			continue
		}
		value, err := promptLine(field.label + ": ")
		if err != nil {
			return info, err
		}
		if value == "" {
			missing = append(missing, field.label)
			continue
		}
		*field.value = value
	}

	if len(missing) > 0 {
		return info, fmt.Errorf("personal information incomplete: %s", strings.Join(missing, ", "))
	}
	return info, nil
}

func printPersonalInfo(info api.PersonalInfo) {
	writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	fmt.Fprintf(writer, "Name\t%s\n", info.FullName())
	fmt.Fprintf(writer, "Email\t%s\n", info.Email)
	fmt.Fprintf(writer, "Contact\t%s\n", info.ContactNumber)
	fmt.Fprintf(writer, "Birthdate\t%s\n", info.Birthdate)
	fmt.Fprintf(writer, "LTMS no.\t%s\n", info.LTMSNumber)
	writer.Flush()
}

func parseDocuments(flags []string, reqs []Requirement) (map[string]string, error) {
	known := map[string]bool{}
	for _, req := range reqs {
		known[req.Key] = true
	}

	documents := map[string]string{}
	for _, entry := range flags {
		key, path, found := strings.Cut(entry, "=")
		if !found || key == "" || path == "" {
			return nil, fmt.Errorf("invalid --doc %q (expected key=path)", entry)
		}
		if !known[key] {
			keys := make([]string, 0, len(reqs))
			for _, req := range reqs {
				keys = append(keys, req.Key)
			}
			return nil, fmt.Errorf("unknown document key %q. Expected one of: %s", key, strings.Join(keys, ", "))
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("document %s: %w", key, err)
		}
		documents[key] = path
	}
	return documents, nil
}

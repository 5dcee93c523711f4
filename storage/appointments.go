package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// AppointmentRecord is one locally remembered appointment: everything the
// printed appointment card carries, so history works offline.
type AppointmentRecord struct {
	ID             string `json:"id"`
	Transaction    string `json:"transaction"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Status         string `json:"status"`
	ApplicantName  string `json:"applicant_name"`
	ApplicantEmail string `json:"applicant_email"`
	BookedAt       string `json:"booked_at"`
	Source         string `json:"source"`
}

type AppointmentFilter struct {
	From     string
	To       string
	Status   string
	Past     bool
	Upcoming bool
	NowDate  string
}

func OpenAppointmentsDB() (*sql.DB, error) {
	if _, err := ensureConfigDir(); err != nil {
		return nil, err
	}
	path, err := AppointmentsPath()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := ensureAppointmentsSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func ensureAppointmentsSchema(db *sql.DB) error {
	createTable := `
CREATE TABLE IF NOT EXISTS appointments (
  id TEXT PRIMARY KEY,
  transaction_type TEXT,
  date TEXT,
  time TEXT,
  status TEXT,
  applicant_name TEXT,
  applicant_email TEXT,
  booked_at TEXT,
  source TEXT
);`

	if _, err := db.Exec(createTable); err != nil {
		return fmt.Errorf("create appointments table: %w", err)
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date);"); err != nil {
		return fmt.Errorf("create appointments index: %w", err)
	}

	return nil
}

func AddAppointmentIfNotExists(db *sql.DB, record AppointmentRecord) (bool, error) {
	query := `
INSERT OR IGNORE INTO appointments (
  id, transaction_type, date, time, status, applicant_name, applicant_email, booked_at, source
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	res, err := db.Exec(
		query,
		record.ID,
		record.Transaction,
		record.Date,
		record.Time,
		record.Status,
		record.ApplicantName,
		record.ApplicantEmail,
		record.BookedAt,
		record.Source,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpsertAppointment inserts or refreshes a record, used when syncing the
// history from the service.
func UpsertAppointment(db *sql.DB, record AppointmentRecord) error {
	query := `
INSERT INTO appointments (
  id, transaction_type, date, time, status, applicant_name, applicant_email, booked_at, source
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  date = excluded.date,
  time = excluded.time,
  status = excluded.status;`

	_, err := db.Exec(
		query,
		record.ID,
		record.Transaction,
		record.Date,
		record.Time,
		record.Status,
		record.ApplicantName,
		record.ApplicantEmail,
		record.BookedAt,
		record.Source,
	)
	return err
}

func SetAppointmentStatus(db *sql.DB, id, status string) (bool, error) {
	res, err := db.Exec("UPDATE appointments SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func RemoveAppointment(db *sql.DB, id string) (bool, error) {
	res, err := db.Exec("DELETE FROM appointments WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func ListAppointments(db *sql.DB, filter AppointmentFilter) ([]AppointmentRecord, error) {
	base := `
SELECT id, transaction_type, date, time, status, applicant_name, applicant_email, booked_at, source
FROM appointments`

	clauses := []string{}
	args := []any{}

	if filter.From != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.To)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Upcoming && filter.NowDate != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.NowDate)
	}
	if filter.Past && filter.NowDate != "" {
		clauses = append(clauses, "date < ?")
		args = append(args, filter.NowDate)
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date, time;"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []AppointmentRecord{}
	for rows.Next() {
		var record AppointmentRecord
		if err := rows.Scan(
			&record.ID,
			&record.Transaction,
			&record.Date,
			&record.Time,
			&record.Status,
			&record.ApplicantName,
			&record.ApplicantEmail,
			&record.BookedAt,
			&record.Source,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

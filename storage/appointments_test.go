package storage

import "testing"

func TestAppointmentHistory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	db, err := OpenAppointmentsDB()
	if err != nil {
		t.Fatalf("OpenAppointmentsDB: %v", err)
	}
	defer db.Close()

	record := AppointmentRecord{
		ID:            "apt-1",
		Transaction:   "Adding Restriction",
		Date:          "2025-06-10",
		Time:          "9-10",
		Status:        "pending",
		ApplicantName: "Juan Dela Cruz",
		BookedAt:      "2025-06-01T08:00:00Z",
		Source:        "cli_booked",
	}
	added, err := AddAppointmentIfNotExists(db, record)
	if err != nil {
		t.Fatalf("AddAppointmentIfNotExists: %v", err)
	}
	if !added {
		t.Fatal("first insert should report added")
	}
	added, err = AddAppointmentIfNotExists(db, record)
	if err != nil {
		t.Fatalf("AddAppointmentIfNotExists repeat: %v", err)
	}
	if added {
		t.Fatal("duplicate insert should be ignored")
	}

	if _, err := SetAppointmentStatus(db, "apt-1", "approved"); err != nil {
		t.Fatalf("SetAppointmentStatus: %v", err)
	}

	records, err := ListAppointments(db, AppointmentFilter{Upcoming: true, NowDate: "2025-06-01"})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(records) != 1 || records[0].Status != "approved" {
		t.Fatalf("unexpected records: %+v", records)
	}

	records, err = ListAppointments(db, AppointmentFilter{Past: true, NowDate: "2025-06-01"})
	if err != nil {
		t.Fatalf("ListAppointments past: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no past records, got %d", len(records))
	}
}

func TestUpsertAndRemoveAppointment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	db, err := OpenAppointmentsDB()
	if err != nil {
		t.Fatalf("OpenAppointmentsDB: %v", err)
	}
	defer db.Close()

	record := AppointmentRecord{
		ID:     "apt-2",
		Date:   "2025-07-01",
		Time:   "10-11",
		Status: "pending",
		Source: "synced",
	}
	if err := UpsertAppointment(db, record); err != nil {
		t.Fatalf("UpsertAppointment: %v", err)
	}

	record.Date = "2025-07-02"
	record.Status = "approved"
	if err := UpsertAppointment(db, record); err != nil {
		t.Fatalf("UpsertAppointment update: %v", err)
	}

	records, err := ListAppointments(db, AppointmentFilter{})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(records) != 1 || records[0].Date != "2025-07-02" || records[0].Status != "approved" {
		t.Fatalf("upsert did not refresh the record: %+v", records)
	}

	removed, err := RemoveAppointment(db, "apt-2")
	if err != nil {
		t.Fatalf("RemoveAppointment: %v", err)
	}
	if !removed {
		t.Fatal("expected the record to be removed")
	}
	removed, err = RemoveAppointment(db, "apt-2")
	if err != nil {
		t.Fatalf("RemoveAppointment repeat: %v", err)
	}
	if removed {
		t.Fatal("removing a missing record should report false")
	}
}

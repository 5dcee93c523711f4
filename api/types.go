package api

import "strings"

// Appointment statuses as the service reports them.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// BlockDate is an administrative capacity override for one (date, slot)
// pair. The time field arrives in either the compact ("8-9") or the human
// ("8:00AM-9:00AM") shape; callers must normalize before comparing.
type BlockDate struct {
	ID       string `json:"id,omitempty"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	MaxSlots int    `json:"maxSlots"`
}

type PersonalInfo struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName"`
	LastName      string `json:"lastName"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
	Birthdate     string `json:"birthdate"`
	LTMSNumber    string `json:"ltmsNumber"`
}

func (p PersonalInfo) FullName() string {
	name := p.FirstName
	if p.MiddleName != "" {
		name += " " + p.MiddleName
	}
	if p.LastName != "" {
		name += " " + p.LastName
	}
	return name
}

type Appointment struct {
	ID                string       `json:"id"`
	ClientID          string       `json:"clientId"`
	TypeOfTransaction string       `json:"typeOfTransaction"`
	AppointmentDate   string       `json:"appointmentDate"`
	AppointmentTime   string       `json:"appointmentTime"`
	Status            string       `json:"status"`
	PersonalInfo      PersonalInfo `json:"personalInfo"`
	Notes             []Note       `json:"notes,omitempty"`
	CreatedAt         string       `json:"createdAt,omitempty"`
}

// Reference is the short form of the appointment id shown on printed cards.
func (a Appointment) Reference() string {
	if len(a.ID) > 8 {
		return strings.ToUpper(a.ID[:8])
	}
	return strings.ToUpper(a.ID)
}

type Note struct {
	Note      string `json:"note"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type AppointmentCounts struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
}

// User is an account record from the admin user listing.
type User struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Birthdate     string `json:"birthdate"`
	ContactNumber string `json:"contactNumber"`
	LTMSNumber    string `json:"ltmsNumber"`
	Role          string `json:"role"`
}

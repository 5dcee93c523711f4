package api

import (
	"context"
	"fmt"
	"net/url"
)

func (c *Client) GetAdminAppointments(ctx context.Context) ([]Appointment, error) {
	req, err := c.newRequest(ctx, "GET", "/appointment/admin/appointment", nil, nil, true)
	if err != nil {
		return nil, err
	}
	var resp appointmentsResponse
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	return resp.Appointments, nil
}

// SetAppointmentStatus approves or rejects a pending appointment.
func (c *Client) SetAppointmentStatus(ctx context.Context, id, status string) error {
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("status must be %q or %q, got %q", StatusApproved, StatusRejected, status)
	}
	path := "/appointment/admin/" + url.PathEscape(id) + "/status"
	req, err := c.newJSONRequest(ctx, "PUT", path, map[string]string{"status": status}, true)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

func (c *Client) AddAppointmentNote(ctx context.Context, id, note string) error {
	path := "/appointment/admin/" + url.PathEscape(id) + "/notes"
	req, err := c.newJSONRequest(ctx, "POST", path, map[string]string{"note": note}, true)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

func (c *Client) GetAllClients(ctx context.Context) ([]User, error) {
	req, err := c.newRequest(ctx, "GET", "/appointment/admin/users", nil, nil, true)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ClientUpdate carries the fields an admin may correct on a client record.
// Nil pointers are omitted so the service only touches what was set.
type ClientUpdate struct {
	Email      *string `json:"email,omitempty"`
	Birthdate  *string `json:"birthdate,omitempty"`
	LTMSNumber *string `json:"ltms_number,omitempty"`
}

func (c *Client) UpdateClientInfo(ctx context.Context, clientID string, update ClientUpdate) (User, error) {
	path := "/appointment/admin/users/" + url.PathEscape(clientID)
	req, err := c.newJSONRequest(ctx, "PUT", path, update, true)
	if err != nil {
		return User{}, err
	}
	var resp struct {
		User User `json:"user"`
	}
	if err := c.doJSON(req, &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}

func (c *Client) ViewAppointment(ctx context.Context, id string) (Appointment, error) {
	path := "/appointment/admin/" + url.PathEscape(id)
	req, err := c.newRequest(ctx, "GET", path, nil, nil, true)
	if err != nil {
		return Appointment{}, err
	}
	var resp appointmentResponse
	if err := c.doJSON(req, &resp); err != nil {
		return Appointment{}, err
	}
	return resp.Appointment, nil
}

func (c *Client) GetAppointmentCounts(ctx context.Context) (AppointmentCounts, error) {
	req, err := c.newRequest(ctx, "GET", "/appointment/admin/appointments/counts", nil, nil, true)
	if err != nil {
		return AppointmentCounts{}, err
	}
	var resp countsResponse
	if err := c.doJSON(req, &resp); err != nil {
		return AppointmentCounts{}, err
	}
	return resp.Counts, nil
}

func (c *Client) GetTodaysAppointments(ctx context.Context) ([]Appointment, error) {
	req, err := c.newRequest(ctx, "GET", "/appointment/admin/appointments/today", nil, nil, true)
	if err != nil {
		return nil, err
	}
	var resp appointmentsResponse
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	return resp.Appointments, nil
}

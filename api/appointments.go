package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
)

type appointmentsResponse struct {
	Appointments []Appointment `json:"appointments"`
}

type appointmentResponse struct {
	Appointment Appointment `json:"appointment"`
}

type countsResponse struct {
	Counts AppointmentCounts `json:"counts"`
}

// CreateAppointmentRequest is the booking submission: the committed (date,
// slot) pair, the reviewed personal information, the transaction type, and
// the required documents as paths to image files keyed by requirement name.
type CreateAppointmentRequest struct {
	ClientID          string
	AppointmentID     string
	TypeOfTransaction string
	Date              string
	Time              string
	PersonalInfo      PersonalInfo
	Documents         map[string]string
}

// CreateAppointment submits the booking as a multipart form and returns the
// appointment id assigned by the service (falling back to the client-side id
// when the response omits one).
func (c *Client) CreateAppointment(ctx context.Context, r CreateAppointmentRequest) (string, error) {
	info, err := json.Marshal(r.PersonalInfo)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := map[string]string{
		"clientId":          r.ClientID,
		"appointmentId":     r.AppointmentID,
		"typeOfTransaction": r.TypeOfTransaction,
		"appointmentDate":   r.Date,
		"appointmentTime":   r.Time,
		"personalInfo":      string(info),
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return "", err
		}
	}
	for key, path := range r.Documents {
		if path == "" {
			continue
		}
		if err := attachFile(form, key, path); err != nil {
			return "", err
		}
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, "POST", "/appointment/client", nil, &buf, true)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var resp struct {
		AppointmentID string `json:"appointmentId"`
	}
	if err := c.doJSON(req, &resp); err != nil {
		return "", err
	}
	if resp.AppointmentID == "" {
		return r.AppointmentID, nil
	}
	return resp.AppointmentID, nil
}

func attachFile(form *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document %s: %w", field, err)
	}
	defer file.Close()

	part, err := form.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("attach document %s: %w", field, err)
	}
	return nil
}

func (c *Client) GetClientAppointments(ctx context.Context) ([]Appointment, error) {
	req, err := c.newRequest(ctx, "GET", "/appointment/client", nil, nil, true)
	if err != nil {
		return nil, err
	}
	var resp appointmentsResponse
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	return resp.Appointments, nil
}

func (c *Client) CancelAppointment(ctx context.Context, id string) error {
	path := "/appointment/client/cancel/" + url.PathEscape(id)
	req, err := c.newJSONRequest(ctx, "PUT", path, map[string]string{}, true)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

func (c *Client) RescheduleAppointment(ctx context.Context, id, newDate, newTime string) error {
	payload := map[string]string{
		"newDate": newDate,
		"newTime": newTime,
	}
	path := "/appointment/client/reschedule/" + url.PathEscape(id)
	req, err := c.newJSONRequest(ctx, "PUT", path, payload, true)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

func (c *Client) ReviewAppointment(ctx context.Context, id string) (Appointment, error) {
	path := "/appointment/client/review/" + url.PathEscape(id)
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

func (c *Client) ClientInfo(ctx context.Context) (PersonalInfo, error) {
	req, err := c.newRequest(ctx, "GET", "/appointment/client/info", nil, nil, true)
	if err != nil {
		return PersonalInfo{}, err
	}
	var resp struct {
		Client PersonalInfo `json:"client"`
	}
	if err := c.doJSON(req, &resp); err != nil {
		return PersonalInfo{}, err
	}
	return resp.Client, nil
}

func (c *Client) GetClientAppointmentCounts(ctx context.Context) (AppointmentCounts, error) {
	req, err := c.newRequest(ctx, "GET", "/appointment/client/counts", nil, nil, true)
	if err != nil {
		return AppointmentCounts{}, err
	}
	var resp countsResponse
	if err := c.doJSON(req, &resp); err != nil {
		return AppointmentCounts{}, err
	}
	return resp.Counts, nil
}

func (c *Client) GetClientTodaysAppointments(ctx context.Context) ([]Appointment, error) {
	req, err := c.newRequest(ctx, "GET", "/appointment/client/today", nil, nil, true)
	if err != nil {
		return nil, err
	}
	var resp appointmentsResponse
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	return resp.Appointments, nil
}

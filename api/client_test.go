package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient()
	client.BaseURL = server.URL
	return client
}

func TestGetBlockDates(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/appointment/block-dates" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("date"); got != "2025-06-10" {
			t.Errorf("date param = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"blocks":[{"date":"2025-06-10","time":"8:00AM-9:00AM","maxSlots":3}]}`))
	})
	client.AccessToken = "test-token"

	blocks, err := client.GetBlockDates(context.Background(), "2025-06-10")
	if err != nil {
		t.Fatalf("GetBlockDates: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Time != "8:00AM-9:00AM" || blocks[0].MaxSlots != 3 {
		t.Errorf("unexpected block: %+v", blocks[0])
	}
}

func TestGetBlockDatesEmptyIsNotAnError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"blocks":[]}`))
	})
	client.AccessToken = "test-token"

	entries, err := client.BlockDates(context.Background(), "2025-06-11")
	if err != nil {
		t.Fatalf("BlockDates: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestBlockDatesRequiresToken(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server without a token")
	})

	if _, err := client.GetBlockDates(context.Background(), "2025-06-10"); err == nil {
		t.Fatal("expected error without access token")
	}
}

func TestLogin(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != "POST" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"user":{"id":"u1","token":"jwt-abc","role":"client","email":"a@b.c"}}`))
	})

	user, err := client.Login(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Token != "jwt-abc" || user.Role != "client" {
		t.Errorf("unexpected user: %+v", user)
	}
	if client.AccessToken != "jwt-abc" {
		t.Errorf("client token not set, got %q", client.AccessToken)
	}
}

func TestLoginFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"invalid credentials"}`))
	})

	_, err := client.Login(context.Background(), "a@b.c", "wrong")
	if err == nil || !strings.Contains(err.Error(), "invalid credentials") {
		t.Fatalf("Login error = %v", err)
	}
}

func TestSetAppointmentStatusValidation(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid status must not reach the server")
	})
	client.AccessToken = "test-token"

	if err := client.SetAppointmentStatus(context.Background(), "a1", "maybe"); err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestSetAppointmentStatusRejected(t *testing.T) {
	var gotPath, gotBody string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	})
	client.AccessToken = "test-token"

	if err := client.SetAppointmentStatus(context.Background(), "a1", StatusRejected); err != nil {
		t.Fatalf("SetAppointmentStatus: %v", err)
	}
	if gotPath != "/appointment/admin/a1/status" {
		t.Errorf("path = %s", gotPath)
	}
	if !strings.Contains(gotBody, `"rejected"`) {
		t.Errorf("body = %s, want rejected status", gotBody)
	}
}

func TestSaveBlockDateRange(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("out-of-range capacity must not reach the server")
	})
	client.AccessToken = "test-token"

	if err := client.SaveBlockDate(context.Background(), "2025-06-10", "8-9", 7); err == nil {
		t.Fatal("expected error for capacity above 6")
	}
	if err := client.SaveBlockDate(context.Background(), "2025-06-10", "8-9", -1); err == nil {
		t.Fatal("expected error for negative capacity")
	}
}

func TestNon2xxSurfacesBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slot already full", http.StatusConflict)
	})
	client.AccessToken = "test-token"

	err := client.CancelAppointment(context.Background(), "a1")
	if err == nil || !strings.Contains(err.Error(), "slot already full") {
		t.Fatalf("error = %v, want body text surfaced", err)
	}
}

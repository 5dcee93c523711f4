package storage

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"
)

func testToken(exp int64) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"sub":"u1","exp":%d}`, exp)))
	return header + "." + payload + ".sig"
}

func TestCredentialsRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	loaded, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil credentials before save, got %+v", loaded)
	}

	creds := Credentials{
		Token:  testToken(time.Now().Add(time.Hour).Unix()),
		UserID: "u1",
		Email:  "a@b.c",
		Role:   "client",
	}
	if err := SaveCredentials(&creds); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	loaded, err = LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if loaded == nil || loaded.Email != "a@b.c" || loaded.Role != "client" {
		t.Fatalf("unexpected credentials: %+v", loaded)
	}

	if err := ClearCredentials(); err != nil {
		t.Fatalf("ClearCredentials: %v", err)
	}
	loaded, err = LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials after clear: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil after clear, got %+v", loaded)
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	live := Credentials{Token: testToken(now.Add(time.Hour).Unix())}
	if live.TokenExpired(now) {
		t.Error("token expiring in an hour reported expired")
	}

	stale := Credentials{Token: testToken(now.Add(-time.Minute).Unix())}
	if !stale.TokenExpired(now) {
		t.Error("expired token reported live")
	}

	garbage := Credentials{Token: "not-a-jwt"}
	if !garbage.TokenExpired(now) {
		t.Error("undecodable token must count as expired")
	}
}

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"lto-cli/storage"
)

func parseDateInput(input string) (time.Time, error) {
	if input == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	now := time.Now()
	switch strings.ToLower(input) {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	case "tomorrow":
		t := now.AddDate(0, 0, 1)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", input, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", input)
	}
	return parsed, nil
}

func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// requireLogin loads stored credentials, rejects expired tokens, and injects
// the bearer token into the API client.
func requireLogin() (*storage.Credentials, error) {
	creds, err := storage.LoadCredentials()
	if err != nil {
		return nil, err
	}
	if creds == nil || creds.Token == "" {
		return nil, fmt.Errorf("not logged in. Run 'lto auth login' first")
	}
	if creds.TokenExpired(time.Now()) {
		return nil, fmt.Errorf("token expired. Run 'lto auth login' to re-authenticate")
	}
	client.AccessToken = creds.Token
	return creds, nil
}

func requireAdmin() (*storage.Credentials, error) {
	creds, err := requireLogin()
	if err != nil {
		return nil, err
	}
	if creds.Role != "admin" && creds.Role != "superadmin" {
		return nil, fmt.Errorf("this command requires an admin account (logged in as %s)", creds.Role)
	}
	return creds, nil
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func shortRef(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

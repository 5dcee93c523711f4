package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"lto-cli/api"
	"lto-cli/storage"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authRegisterCmd())
	cmd.AddCommand(authStatusCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authVerifyCmd())
	return cmd
}

func authLoginCmd() *cobra.Command {
	var email string
	var password string
	var authFile string
	authFileDefault := os.Getenv("LTO_AUTH_FILE")

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the appointment service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if authFile != "" {
				fileEmail, filePassword, err := readAuthFile(authFile)
				if err != nil {
					return err
				}
				if email == "" {
					email = fileEmail
				}
				if password == "" {
					password = filePassword
				}
			}

			if email == "" {
				value, err := promptLine("Email: ")
				if err != nil {
					return err
				}
				email = value
			}
			if password == "" {
				fmt.Print("Password: ")
				bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Println()
				if err != nil {
					return err
				}
				password = strings.TrimSpace(string(bytes))
			}
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			ctx := context.Background()
			user, err := client.Login(ctx, email, password)
			if err != nil {
				return err
			}

			creds := storage.Credentials{
				Token:   user.Token,
				UserID:  user.ID,
				Email:   email,
				Role:    user.Role,
				SavedAt: time.Now().UTC().Format(time.RFC3339),
			}
			if err := storage.SaveCredentials(&creds); err != nil {
				return err
			}

			fmt.Printf("Logged in as %s (%s).\n", email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&authFile, "auth-file", authFileDefault, "Load credentials from file (default: $LTO_AUTH_FILE)")
	return cmd
}

func authRegisterCmd() *cobra.Command {
	var form api.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new client account",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts := []struct {
				label string
				value *string
			}{
				{"First name: ", &form.FirstName},
				{"Last name: ", &form.LastName},
				{"Email: ", &form.Email},
			}
			for _, p := range prompts {
				if *p.value != "" {
					continue
				}
				value, err := promptLine(p.label)
				if err != nil {
					return err
				}
				*p.value = value
			}
			if form.Password == "" {
				fmt.Print("Password: ")
				bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Println()
				if err != nil {
					return err
				}
				form.Password = strings.TrimSpace(string(bytes))
			}
			if form.FirstName == "" || form.LastName == "" || form.Email == "" || form.Password == "" {
				return fmt.Errorf("first name, last name, email, and password are required")
			}

			ctx := context.Background()
			message, err := client.Register(ctx, form)
			if err != nil {
				return err
			}
			if message == "" {
				message = "Registered. Check your email for the verification link."
			}
			fmt.Println(message)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&form.MiddleName, "middle-name", "", "Middle name (optional)")
	cmd.Flags().StringVar(&form.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password")
	cmd.Flags().StringVar(&form.Birthdate, "birthdate", "", "Birthdate (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.ContactNumber, "contact-number", "", "Contact number")
	cmd.Flags().StringVar(&form.LTMSNumber, "ltms-number", "", "LTMS number")
	return cmd
}

func authStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check auth status",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := storage.LoadCredentials()
			if err != nil {
				return err
			}
			if creds == nil || creds.Token == "" {
				fmt.Println("Not logged in.")
				return nil
			}

			if creds.TokenExpired(time.Now()) {
				fmt.Printf("Token expired for %s. Run 'lto auth login' to re-authenticate.\n", creds.Email)
				return nil
			}
			fmt.Printf("Logged in as %s (%s).\n", creds.Email, creds.Role)
			return nil
		},
	}

	return cmd
}

func authLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.ClearCredentials(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}

	return cmd
}

func authVerifyCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an email address with the emailed token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("--token is required")
			}
			ctx := context.Background()
			message, err := client.VerifyEmail(ctx, token)
			if err != nil {
				return err
			}
			if message == "" {
				message = "Email verified."
			}
			fmt.Println(message)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Verification token from the email")
	return cmd
}

func readAuthFile(path string) (string, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var email string
	var password string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "[username]":
			if scanner.Scan() {
				email = strings.TrimSpace(scanner.Text())
			}
		case "[password]":
			if scanner.Scan() {
				password = strings.TrimSpace(scanner.Text())
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}
	return email, password, nil
}

package api

import (
	"context"
	"fmt"
	"net/url"
)

// AuthUser is the account payload returned by a successful login. The token
// is a JWT the service expects as a bearer credential on every other call.
type AuthUser struct {
	ID        string `json:"id"`
	Token     string `json:"token"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type authResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    AuthUser `json:"user"`
}

type RegisterForm struct {
	Type          string `json:"type"` // "client" or "admin"
	AdminType     string `json:"adminType,omitempty"`
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName,omitempty"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Birthdate     string `json:"birthdate,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
	LTMSNumber    string `json:"ltmsNumber,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthUser, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	req, err := c.newJSONRequest(ctx, "POST", "/auth/login", payload, false)
	if err != nil {
		return AuthUser{}, err
	}

	var resp authResponse
	if err := c.doJSON(req, &resp); err != nil {
		return AuthUser{}, err
	}
	if !resp.Success || resp.User.Token == "" {
		if resp.Message == "" {
			resp.Message = "missing token"
		}
		return AuthUser{}, fmt.Errorf("login failed: %s", resp.Message)
	}

	c.AccessToken = resp.User.Token
	return resp.User, nil
}

func (c *Client) Register(ctx context.Context, form RegisterForm) (string, error) {
	if form.Type == "" {
		form.Type = "client"
	}
	req, err := c.newJSONRequest(ctx, "POST", "/auth/register", form, false)
	if err != nil {
		return "", err
	}

	var resp authResponse
	if err := c.doJSON(req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("registration failed: %s", resp.Message)
	}
	return resp.Message, nil
}

func (c *Client) VerifyEmail(ctx context.Context, token string) (string, error) {
	q := url.Values{}
	q.Set("token", token)
	req, err := c.newRequest(ctx, "GET", "/verify-email", q, nil, false)
	if err != nil {
		return "", err
	}

	var resp authResponse
	if err := c.doJSON(req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("verification failed: %s", resp.Message)
	}
	return resp.Message, nil
}

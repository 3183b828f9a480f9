package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// User is the slice of the auth service's user record we care about.
type User struct {
	ID string `json:"id"`
}

// Client talks to the hosted auth/identity service (Supabase). All calls are
// thin REST passthroughs; failures carry the downstream message and are never
// retried here.
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether the service's URL and key were supplied.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.serviceKey != ""
}

// GetUser resolves an access token to the user it belongs to.
func (c *Client) GetUser(ctx context.Context, accessToken string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("auth service: %s", readMessage(resp.Body))
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return User{}, err
	}
	if u.ID == "" {
		return User{}, fmt.Errorf("auth service: user has no id")
	}
	return u, nil
}

// GetRole looks up the user's role in the profiles table.
func (c *Client) GetRole(ctx context.Context, userID string) (string, error) {
	url := c.baseURL + "/rest/v1/profiles?id=eq." + userID + "&select=role"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("profile lookup: %s", readMessage(resp.Body))
	}

	var rows []struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("profile lookup: no profile for user %s", userID)
	}
	return rows[0].Role, nil
}

// UpdateUsername changes the target user's login identifier through the
// admin users endpoint.
func (c *Client) UpdateUsername(ctx context.Context, userID, newUsername string) error {
	body, err := json.Marshal(map[string]string{"email": newUsername})
	if err != nil {
		return err
	}

	url := c.baseURL + "/auth/v1/admin/users/" + userID
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("update user: %s", readMessage(resp.Body))
	}
	return nil
}

// readMessage extracts a downstream error message, falling back to the raw
// body when it is not the usual {"message": ...} shape.
func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "unknown error"
	}
	var payload struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Msg != "" {
			return payload.Msg
		}
	}
	return string(raw)
}

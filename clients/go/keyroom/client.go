// Package keyroom provides a client for the keyroom session API.
package keyroom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SessionKeyHeader carries the session key on send, fetch and delete
// requests.
const SessionKeyHeader = "X-Session-Key"

// Message is one decrypted chat entry.
type Message struct {
	Text      string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Client is a keyroom API client. SessionKey is set by CreateSession or
// Join and used by the message operations.
type Client struct {
	BaseURL    string
	SessionKey string
	HTTPClient *http.Client
}

// NewClient creates a new keyroom client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateSession asks the server for a fresh session and remembers its key.
func (c *Client) CreateSession() (string, error) {
	var out struct {
		Key string `json:"key"`
	}
	if err := c.do(http.MethodPost, "/session", nil, false, &out); err != nil {
		return "", err
	}
	c.SessionKey = out.Key
	return out.Key, nil
}

// Join checks the key against the server and remembers it on success.
func (c *Client) Join(key string) (bool, error) {
	var out struct {
		Success bool `json:"success"`
	}
	body := map[string]string{"key": key}
	if err := c.do(http.MethodPost, "/session/join", body, false, &out); err != nil {
		return false, err
	}
	if out.Success {
		c.SessionKey = key
	}
	return out.Success, nil
}

// Send posts a message and returns the full history including it.
func (c *Client) Send(text string) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	body := map[string]string{"message": text}
	if err := c.do(http.MethodPost, "/messages", body, true, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// Fetch returns the session's full history.
func (c *Client) Fetch() ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := c.do(http.MethodGet, "/messages", nil, true, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// Delete destroys the session on the server.
func (c *Client) Delete() (bool, error) {
	var out struct {
		Deleted bool `json:"deleted"`
	}
	if err := c.do(http.MethodDelete, "/session", nil, true, &out); err != nil {
		return false, err
	}
	if out.Deleted {
		c.SessionKey = ""
	}
	return out.Deleted, nil
}

func (c *Client) do(method, path string, body any, withKey bool, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if withKey {
		if c.SessionKey == "" {
			return fmt.Errorf("no session key: create or join a session first")
		}
		req.Header.Set(SessionKeyHeader, c.SessionKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

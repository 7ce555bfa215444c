package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"contentbot/types"
)

// ErrConflict is returned by Trigger when a run is already active
var ErrConflict = errors.New("a job is already running")

// Client is a thin HTTP client for the bot's API
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetStatus fetches the run state and recent activity
func (c *Client) GetStatus() (*types.StatusResponse, error) {
	resp, err := c.client.Get(c.baseURL + "/api/status")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var status types.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &status, nil
}

// Trigger asks the server to start a run and returns its run ID
func (c *Client) Trigger() (string, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/trigger", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Trigger-Origin", "Monitor")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to trigger run: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		var body struct {
			RunID string `json:"runId"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		return body.RunID, nil
	case http.StatusConflict:
		return "", ErrConflict
	default:
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
}

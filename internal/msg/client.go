// Package msg is the asynchronous request/response channel between the
// annotation engine and the persistence owner. The engine never touches
// the store for saves; it sends a saveVideo request and acts on the
// ok/exists response.
package msg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/asadsehto/savetube/internal/model"
)

// Client talks to a running savetubed instance. It implements
// annotate.Saver.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the daemon at baseURL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SaveVideo issues the saveVideo request and returns the daemon's status.
func (c *Client) SaveVideo(ctx context.Context, candidate model.VideoRecord) (model.SaveStatus, error) {
	body, err := json.Marshal(model.SaveRequest{
		Action: model.ActionSaveVideo,
		Data:   candidate,
	})
	if err != nil {
		return "", fmt.Errorf("msg: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/videos", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("msg: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("msg: saveVideo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Code != "" {
			return "", fmt.Errorf("msg: saveVideo: %s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return "", fmt.Errorf("msg: saveVideo: unexpected status %d", resp.StatusCode)
	}

	var saveResp model.SaveResponse
	if err := json.NewDecoder(resp.Body).Decode(&saveResp); err != nil {
		return "", fmt.Errorf("msg: decode response: %w", err)
	}
	return saveResp.Status, nil
}

// Ping checks whether the daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/live", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("msg: ping: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Package zpro is the outbound client for the zpro chat API, used to send
// replies back on the conversation channel.
package zpro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mackflow-bridge/internal/common/config"
	"mackflow-bridge/internal/common/logger"
)

// Client calls the zpro external message API with bearer authentication.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiID      string
	token      string
	logger     logger.Logger
}

func NewClient(cfg config.ZproConfig, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetTimeout()},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiID:      cfg.APIID,
		token:      cfg.Token,
		logger:     log,
	}
}

type sendMessageRequest struct {
	Body        string `json:"body"`
	Number      string `json:"number"`
	ExternalKey string `json:"externalKey"`
	IsClosed    bool   `json:"isClosed"`
}

// SendMessage delivers a reply to the given number on the chat channel.
func (c *Client) SendMessage(ctx context.Context, number, body, externalKey string) error {
	url := fmt.Sprintf("%s/v2/api/external/%s", c.baseURL, c.apiID)

	payload, err := json.Marshal(sendMessageRequest{
		Body:        body,
		Number:      number,
		ExternalKey: externalKey,
		IsClosed:    false,
	})
	if err != nil {
		return fmt.Errorf("failed to encode zpro message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create zpro request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("zpro request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("zpro send rejected", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(respBody),
		})
		return fmt.Errorf("zpro send returned status %d", resp.StatusCode)
	}

	c.logger.Debug("zpro message sent", map[string]interface{}{
		"number":      number,
		"externalKey": externalKey,
	})
	return nil
}

// ListTickets performs a lightweight authenticated read, used as the smoke
// probe for zpro connectivity.
func (c *Client) ListTickets(ctx context.Context) (int, error) {
	url := fmt.Sprintf("%s/v2/api/external/%s/listTickets?pageNumber=1&status=open", c.baseURL, c.apiID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create zpro request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("zpro request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}

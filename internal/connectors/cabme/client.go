// Package cabme is the outbound client for the dispatch/booking API that
// opens service orders and returns their protocol numbers.
package cabme

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
	"mackflow-bridge/internal/models"
)

// Client authenticates with the apikey/accesstoken header pair.
type Client struct {
	httpClient *http.Client
	cfg        config.CabmeConfig
	logger     logger.Logger
}

func NewClient(cfg config.CabmeConfig, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetTimeout()},
		cfg:        cfg,
		logger:     log,
	}
}

// OrderRequest is the create-order payload. Tenant defaults fill the fields
// the conversation does not collect.
type OrderRequest struct {
	RiderID        string  `json:"rider_id"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	TotalPassenger int     `json:"total_passenger"`
	Fare           float64 `json:"fare"`
	Distance       float64 `json:"distance"`
	Duration       int     `json:"duration"`
	VehicleType    string  `json:"vehicle_type"`
	CustomerName   string  `json:"customer_name"`
	Plate          string  `json:"plate"`
	Location       string  `json:"location"`
	ServiceType    string  `json:"service_type"`
	Phone          string  `json:"phone"`
}

// OrderResult is what the orchestrator needs from a successful create.
type OrderResult struct {
	Protocol string
	OrderID  string
}

// buildOrderRequest merges tenant defaults with the conversation fields.
// Conversation data always wins for the fields it provides.
func (c *Client) buildOrderRequest(sess *models.ConversationSession) OrderRequest {
	d := c.cfg.Defaults
	return OrderRequest{
		RiderID:        d.RiderID,
		Latitude:       d.Latitude,
		Longitude:      d.Longitude,
		TotalPassenger: d.TotalPassenger,
		Fare:           d.Fare,
		Distance:       d.Distance,
		Duration:       d.Duration,
		VehicleType:    d.VehicleType,
		CustomerName:   sess.Name,
		Plate:          sess.Plate,
		Location:       sess.Location,
		ServiceType:    sess.ServiceType,
		Phone:          sess.Phone,
	}
}

// CreateOrder opens a service order and extracts its protocol from the
// response.
func (c *Client) CreateOrder(ctx context.Context, sess *models.ConversationSession) (*OrderResult, error) {
	url := ResolveCreateOrderURL(c.cfg.BaseURL, c.cfg.CreateOrderPath)

	payload, err := json.Marshal(c.buildOrderRequest(sess))
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("order creation rejected", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return nil, fmt.Errorf("order creation returned status %d", resp.StatusCode)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	protocol := ExtractProtocol(decoded)
	if protocol == "" {
		return nil, fmt.Errorf("order response carried no protocol")
	}

	result := &OrderResult{Protocol: protocol}
	if id := firstString(decoded, "id"); id != "" && id != protocol {
		result.OrderID = id
	}

	c.logger.Info("order created", map[string]interface{}{
		"protocol": result.Protocol,
	})
	return result, nil
}

// GetVehicleCategories performs a lightweight authenticated read, used as
// the smoke probe for dispatch connectivity.
func (c *Client) GetVehicleCategories(ctx context.Context) (int, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/Vehicle-category/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create categories request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("categories request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("accesstoken", c.cfg.AccessToken)
}

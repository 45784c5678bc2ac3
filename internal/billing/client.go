package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"pos-billing/internal/common/logger"
	"pos-billing/internal/domain"
)

// Client submits carts to a billing service over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger
}

type ClientOption func(*Client)

func WithToken(token string) ClientOption { return func(c *Client) { c.token = token } }

func WithHTTPClient(h *http.Client) ClientOption { return func(c *Client) { c.http = h } }

func WithClientLogger(l *logger.Logger) ClientOption { return func(c *Client) { c.log = l } }

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit posts req to /generate_bill. A non-2xx answer with a JSON body is
// returned as-is so the caller can inspect its status.
func (c *Client) Submit(ctx context.Context, req domain.BillRequest) (domain.BillResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.BillResponse{}, fmt.Errorf("failed to marshal bill: %w", err)
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate_bill", bytes.NewReader(body))
	if err != nil {
		return domain.BillResponse{}, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		hreq.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := c.log.WithRequestID(requestID)
	resp, err := c.http.Do(hreq)
	if err != nil {
		log.Error("generate_bill_request_failed", err, nil)
		return domain.BillResponse{}, fmt.Errorf("failed to call billing service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.BillResponse{}, fmt.Errorf("failed to read response: %w", err)
	}
	var out domain.BillResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("generate_bill_rejected", nil, map[string]any{"http_status": resp.StatusCode})
		if decodeErr == nil && out.Status != "" {
			return out, nil
		}
		return domain.BillResponse{}, fmt.Errorf("billing service answered %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return domain.BillResponse{}, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if out.Status == "" {
		return out, errors.New("billing service answered without a status")
	}
	log.Debug("generate_bill_answered", map[string]any{"status": out.Status, "bill_number": out.BillNumber})
	return out, nil
}

// Menu fetches the stored menu from GET /menu.
func (c *Client) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/menu", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	hreq.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		hreq.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := c.log.WithRequestID(requestID)
	resp, err := c.http.Do(hreq)
	if err != nil {
		log.Error("menu_request_failed", err, nil)
		return nil, fmt.Errorf("failed to call billing service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("menu_rejected", nil, map[string]any{"http_status": resp.StatusCode})
		return nil, fmt.Errorf("billing service answered %d", resp.StatusCode)
	}
	var out domain.MenuResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}
	log.Debug("menu_fetched", map[string]any{"items": len(out.Items)})
	return out.Items, nil
}

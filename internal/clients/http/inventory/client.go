package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
	"github.com/figurestore/go-order-api/internal/domains/orders/ports"
)

var _ ports.InventoryStore = (*Client)(nil)

// Client talks to an external counter service that owns the per-variant
// stock counters. It satisfies the plain get/set contract; the reservation
// service above it owns the critical section.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient instantiates the inventory client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("inventory base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

type counterPayload struct {
	FigureType string `json:"figureType,omitempty"`
	Count      int    `json:"count"`
}

// GetCount reads the counter for one figure variant. A 404 reads as zero
// stock, matching the absent-row semantics of the database store.
func (c *Client) GetCount(ctx context.Context, kind domain.Kind) (int, error) {
	if c == nil || c.httpClient == nil {
		return 0, fmt.Errorf("%w: inventory client not configured", ports.ErrInventoryUnavailable)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.counterURL(kind), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ports.ErrInventoryUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ports.ErrInventoryUnavailable, err)
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		var payload counterPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return 0, fmt.Errorf("%w: decode counter: %v", ports.ErrInventoryUnavailable, err)
		}
		return payload.Count, nil
	case resp.StatusCode == http.StatusNotFound:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: counter service returned %s", ports.ErrInventoryUnavailable, resp.Status)
	}
}

// SetCount overwrites the counter for one figure variant.
func (c *Client) SetCount(ctx context.Context, kind domain.Kind, count int) error {
	if c == nil || c.httpClient == nil {
		return fmt.Errorf("%w: inventory client not configured", ports.ErrInventoryUnavailable)
	}
	body, err := json.Marshal(counterPayload{Count: count})
	if err != nil {
		return fmt.Errorf("%w: encode counter: %v", ports.ErrInventoryUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.counterURL(kind), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrInventoryUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrInventoryUnavailable, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: counter service returned %s", ports.ErrInventoryUnavailable, resp.Status)
	}
	return nil
}

func (c *Client) counterURL(kind domain.Kind) string {
	return fmt.Sprintf("%s/v1/counters/%s", c.baseURL, url.PathEscape(string(kind)))
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}

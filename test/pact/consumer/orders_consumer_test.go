//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/figurestore/go-order-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type cartPosition struct {
	FigureType string  `json:"figureType"`
	SideA      float64 `json:"sideA,omitempty"`
	SideB      float64 `json:"sideB,omitempty"`
	SideC      float64 `json:"sideC,omitempty"`
	Count      int     `json:"count"`
}

type submitOrderRequest struct {
	Positions []cartPosition `json:"positions"`
}

type orderReceipt struct {
	OrderID  string `json:"orderId"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type stockLevel struct {
	FigureType string `json:"figureType"`
	Count      int    `json:"count"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestStorefrontContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	requestCart := submitOrderRequest{
		Positions: []cartPosition{
			{FigureType: "triangle", SideA: 3, SideB: 4, SideC: 5, Count: 1},
			{FigureType: "circle", SideA: 2, Count: 2},
		},
	}
	receiptMatcher := matchers.Map{
		"orderId":  matchers.Regex(pacttest.ExistingOrderID, `[0-9a-f-]{36}`),
		"total":    matchers.Regex("29.8195", `\d+\.\d{4}`),
		"currency": matchers.S("EUR"),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateStockSeeded).
		UponReceiving("a cart submission").
		WithRequest("POST", "/v1/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"positions": matchers.ArrayMinLike(map[string]any{
					"figureType": matchers.Term("triangle", "triangle|square|circle"),
					"count":      matchers.Like(1),
				}, 1),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(receiptMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderMissing).
		UponReceiving("a request for a missing order").
		WithRequest("GET", fmt.Sprintf("/v1/orders/%s", pacttest.MissingOrderID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateStockSeeded).
		UponReceiving("an inventory listing request").
		WithRequest("GET", "/v1/store/inventory").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.ArrayMinLike(map[string]any{
				"figureType": matchers.Term("triangle", "triangle|square|circle"),
				"count":      matchers.Like(5),
			}, 1))
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newOrderClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		receipt, err := client.SubmitOrder(ctx, requestCart)
		if err != nil {
			return fmt.Errorf("submit order: %w", err)
		}
		if receipt == nil || receipt.OrderID == "" {
			return fmt.Errorf("expected receipt order ID to be set")
		}
		if receipt.Currency != "EUR" {
			return fmt.Errorf("expected EUR receipt, got %q", receipt.Currency)
		}

		if _, err := client.GetOrder(ctx, pacttest.MissingOrderID); err == nil {
			return fmt.Errorf("expected 404 for order %s", pacttest.MissingOrderID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}

		levels, err := client.GetInventory(ctx)
		if err != nil {
			return fmt.Errorf("get inventory: %w", err)
		}
		if len(levels) == 0 {
			return fmt.Errorf("expected at least one stock level")
		}

		return nil
	})
	require.NoError(t, err)
}

type orderClient struct {
	baseURL    string
	httpClient *http.Client
}

func newOrderClient(config pactconsumer.MockServerConfig) *orderClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &orderClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *orderClient) SubmitOrder(ctx context.Context, cart submitOrderRequest) (*orderReceipt, error) {
	body, err := json.Marshal(cart)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var receipt orderReceipt
	if err := json.NewDecoder(res.Body).Decode(&receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *orderClient) GetOrder(ctx context.Context, id string) (*orderReceipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/orders/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var receipt orderReceipt
	if err := json.NewDecoder(res.Body).Decode(&receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *orderClient) GetInventory(ctx context.Context) ([]stockLevel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/store/inventory", nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var levels []stockLevel
	if err := json.NewDecoder(res.Body).Decode(&levels); err != nil {
		return nil, err
	}
	return levels, nil
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}

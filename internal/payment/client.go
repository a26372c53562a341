package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gearloop-backend/internal/logger"
)

// BillingData is the payer information the provider requires when issuing a
// payment key.
type BillingData struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone_number"`
}

// Provider is the consumed payment-gateway capability. It is constructed
// explicitly and injected; there is no package-level client.
type Provider interface {
	CreateOrder(ctx context.Context, amountCents int64, currency, merchantRef string) (orderID string, err error)
	CreatePaymentKey(ctx context.Context, amountCents int64, currency, orderID string, billing BillingData) (paymentKey string, err error)
}

// Client talks to the hosted payment gateway over HTTP. Calls are bounded by
// the client timeout; a failed or slow call is reported to the caller as an
// error and never holds any database lock.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

type createOrderRequest struct {
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
	MerchantRef  string `json:"merchant_order_id"`
	DeliveryNeed bool   `json:"delivery_needed"`
}

type createOrderResponse struct {
	ID json.Number `json:"id"`
}

func (c *Client) CreateOrder(ctx context.Context, amountCents int64, currency, merchantRef string) (string, error) {
	logger.ExternalServiceCall("payment-provider", "CreateOrder", "amount_cents", amountCents, "currency", currency)

	var resp createOrderResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/ecommerce/orders", createOrderRequest{
		AmountCents: amountCents,
		Currency:    currency,
		MerchantRef: merchantRef,
	}, &resp)
	logger.ExternalServiceResult("payment-provider", "CreateOrder", err)
	if err != nil {
		return "", err
	}
	if resp.ID.String() == "" {
		return "", fmt.Errorf("provider returned no order id")
	}
	return resp.ID.String(), nil
}

type createPaymentKeyRequest struct {
	AmountCents int64       `json:"amount_cents"`
	Currency    string      `json:"currency"`
	OrderID     string      `json:"order_id"`
	Billing     BillingData `json:"billing_data"`
	Expiration  int         `json:"expiration"`
}

type createPaymentKeyResponse struct {
	Token string `json:"token"`
}

func (c *Client) CreatePaymentKey(ctx context.Context, amountCents int64, currency, orderID string, billing BillingData) (string, error) {
	logger.ExternalServiceCall("payment-provider", "CreatePaymentKey", "order_id", orderID)

	var resp createPaymentKeyResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/acceptance/payment_keys", createPaymentKeyRequest{
		AmountCents: amountCents,
		Currency:    currency,
		OrderID:     orderID,
		Billing:     billing,
		Expiration:  3600,
	}, &resp)
	logger.ExternalServiceResult("payment-provider", "CreatePaymentKey", err)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("provider returned no payment key")
	}
	return resp.Token, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(jsonBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("provider error: status %d, body: %s", resp.StatusCode, respBody)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse provider response: %w", err)
		}
	}
	return nil
}

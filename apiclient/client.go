package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"checkout-svc/models"

	"go.uber.org/zap"
)

// CodeNetworkError is the fixed code assigned to requests that never
// completed. Backend-supplied codes pass through untouched.
const CodeNetworkError = "NETWORK_ERROR"

// APIError is the error half of the backend's response envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

// Client talks to the backend REST API. One attempt per call: no retries and
// no backoff, the backend owns resilience.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Code: CodeNetworkError, Message: err.Error()}
	}
	defer resp.Body.Close()

	// The request completed, so a non-envelope body (a proxy error page, a
	// truncated response) reports the HTTP status rather than a network error.
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{Code: fmt.Sprintf("HTTP_%d", resp.StatusCode), Message: "invalid response body"}
	}

	if !env.Success {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &APIError{Code: fmt.Sprintf("HTTP_%d", resp.StatusCode), Message: http.StatusText(resp.StatusCode)}
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &APIError{Code: fmt.Sprintf("HTTP_%d", resp.StatusCode), Message: "invalid response data"}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, token, nil, out)
}

func (c *Client) MerchantStats(ctx context.Context, token string) (*models.MerchantStats, error) {
	var stats models.MerchantStats
	if err := c.get(ctx, "/merchant/stats", token, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) Transactions(ctx context.Context, token string, query url.Values) ([]models.Transaction, error) {
	path := "/transactions"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var txns []models.Transaction
	if err := c.get(ctx, path, token, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// CreatePaymentIntent registers an intent with the backend and returns its
// record, including the hosted checkout link.
func (c *Client) CreatePaymentIntent(ctx context.Context, token string, intent models.PaymentIntent) (*models.CreatedPaymentIntent, error) {
	var created models.CreatedPaymentIntent
	if err := c.do(ctx, http.MethodPost, "/payment-intents", token, intent, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) TransactionStats(ctx context.Context, token string) (*models.TransactionStats, error) {
	var stats models.TransactionStats
	if err := c.get(ctx, "/transactions/stats", token, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ExportTransactions returns the raw CSV export produced by the backend.
func (c *Client) ExportTransactions(ctx context.Context, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions/export", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Code: CodeNetworkError, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Code: fmt.Sprintf("HTTP_%d", resp.StatusCode), Message: http.StatusText(resp.StatusCode)}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, &APIError{Code: CodeNetworkError, Message: err.Error()}
	}
	return buf.Bytes(), nil
}

func (c *Client) Customers(ctx context.Context, token string) ([]models.Customer, error) {
	var customers []models.Customer
	if err := c.get(ctx, "/customers", token, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (c *Client) Settings(ctx context.Context, token string) (*models.MerchantSettings, error) {
	var settings models.MerchantSettings
	if err := c.get(ctx, "/settings", token, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) CryptoPrices(ctx context.Context, token string) ([]models.CryptoPrice, error) {
	var prices []models.CryptoPrice
	if err := c.get(ctx, "/crypto/prices", token, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

func (c *Client) CryptoWallets(ctx context.Context, token string) ([]models.CryptoWallet, error) {
	var wallets []models.CryptoWallet
	if err := c.get(ctx, "/crypto/wallets", token, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (c *Client) CryptoTransactions(ctx context.Context, token string) ([]models.CryptoTransaction, error) {
	var txns []models.CryptoTransaction
	if err := c.get(ctx, "/crypto/transactions", token, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

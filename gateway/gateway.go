package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"checkout-svc/models"

	"go.uber.org/zap"
)

// Error is a rejection from the gateway. Its message is shown to the paying
// customer verbatim.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type PaymentRequest struct {
	Amount   float64              `json:"amount"`
	Currency models.Currency      `json:"currency"`
	Method   models.PaymentMethod `json:"method"`
	Customer models.CustomerInfo  `json:"customer"`
	TxRef    string               `json:"tx_ref"`
}

// PaymentResponse carries exactly one of the two outcomes: a hosted checkout
// link for card payments, or virtual-account details for bank transfers.
type PaymentResponse struct {
	CheckoutURL string
	Bank        *models.BankPaymentDetails
}

type createPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Link          string    `json:"link"`
		AccountNumber string    `json:"account_number"`
		BankName      string    `json:"bank_name"`
		Reference     string    `json:"reference"`
		ExpiresAt     time.Time `json:"expires_at"`
		Amount        float64   `json:"amount"`
	} `json:"data"`
}

// Client posts create-payment requests to the payment gateway. Single attempt
// per call; the tx_ref doubles as the gateway-side idempotency reference.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
		logger:  logger,
	}
}

func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create-payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-payment", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build create-payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	var payload createPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if !payload.Success {
		msg := payload.Message
		if msg == "" {
			msg = "payment could not be initiated"
		}
		return nil, &Error{Message: msg}
	}

	c.logger.Info("Payment created at gateway",
		zap.String("tx_ref", req.TxRef),
		zap.String("method", string(req.Method)),
		zap.Float64("amount", req.Amount),
	)

	switch req.Method {
	case models.PaymentMethodCard:
		if payload.Data.Link == "" {
			return nil, &Error{Message: "gateway returned no checkout link"}
		}
		return &PaymentResponse{CheckoutURL: payload.Data.Link}, nil
	case models.PaymentMethodBankTransfer:
		if payload.Data.AccountNumber == "" {
			return nil, &Error{Message: "gateway returned no account details"}
		}
		return &PaymentResponse{Bank: &models.BankPaymentDetails{
			AccountNumber: payload.Data.AccountNumber,
			BankName:      payload.Data.BankName,
			Reference:     payload.Data.Reference,
			ExpiresAt:     payload.Data.ExpiresAt,
			Amount:        payload.Data.Amount,
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported gateway method: %s", req.Method)
	}
}

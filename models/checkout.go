package models

import "time"

type CheckoutStatus string

const (
	CheckoutStatusIdle            CheckoutStatus = "idle"
	CheckoutStatusProcessing      CheckoutStatus = "processing"
	CheckoutStatusRedirecting     CheckoutStatus = "redirecting"
	CheckoutStatusAwaitingPayment CheckoutStatus = "awaiting_payment"
	CheckoutStatusSuccess         CheckoutStatus = "success"
)

type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodCrypto       PaymentMethod = "crypto"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

type Currency string

const (
	CurrencyUSD  Currency = "USD"
	CurrencyNGN  Currency = "NGN"
	CurrencyUSDT Currency = "USDT"
	CurrencyETH  Currency = "ETH"
	CurrencyEUR  Currency = "EUR"
	CurrencyGBP  Currency = "GBP"
)

// PaymentIntent is the snapshot a checkout session is created from. It is
// never mutated after the session is created.
type PaymentIntent struct {
	MerchantName string   `json:"merchant_name" binding:"required"`
	Description  string   `json:"description"`
	Amount       float64  `json:"amount" binding:"required,gt=0"`
	Currency     Currency `json:"currency" binding:"required"`
	OrderID      string   `json:"order_id" binding:"required"`
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BankPaymentDetails holds the virtual account returned by the gateway for a
// bank transfer. Populated once, cleared when the user switches method.
type BankPaymentDetails struct {
	AccountNumber string    `json:"account_number"`
	BankName      string    `json:"bank_name"`
	Reference     string    `json:"reference"`
	ExpiresAt     time.Time `json:"expires_at"`
	Amount        float64   `json:"amount"`
}

type CheckoutSession struct {
	ID       string         `json:"id"`
	TxRef    string         `json:"tx_ref"`
	Intent   PaymentIntent  `json:"intent"`
	Method   PaymentMethod  `json:"method,omitempty"`
	Status   CheckoutStatus `json:"status"`
	Customer CustomerInfo   `json:"customer"`

	// Method-specific transient state.
	BankDetails *BankPaymentDetails `json:"bank_details,omitempty"`
	CheckoutURL string              `json:"checkout_url,omitempty"`
	TxHash      string              `json:"tx_hash,omitempty"`
	Error       string              `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CheckoutEvent struct {
	SessionID string         `json:"session_id"`
	TxRef     string         `json:"tx_ref"`
	Method    PaymentMethod  `json:"method"`
	Status    CheckoutStatus `json:"status"`
	Amount    float64        `json:"amount"`
	Currency  Currency       `json:"currency"`
	EventType string         `json:"event_type"` // checkout_completed, checkout_failed, bank_transfer_initiated
	TxHash    string         `json:"tx_hash,omitempty"`
}

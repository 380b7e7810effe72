package models

import "time"

// Read models for the dashboard views. These mirror the backend's JSON; the
// service never mutates them.

type MerchantStats struct {
	TotalVolume       float64 `json:"total_volume"`
	TotalTransactions int     `json:"total_transactions"`
	SuccessRate       float64 `json:"success_rate"`
	PendingSettlement float64 `json:"pending_settlement"`
}

type Transaction struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	Amount    float64   `json:"amount"`
	Currency  Currency  `json:"currency"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	Customer  string    `json:"customer"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatedPaymentIntent is the backend's record of an intent registered from
// the dashboard, including the hosted checkout link pointing at it.
type CreatedPaymentIntent struct {
	ID          string        `json:"id"`
	Intent      PaymentIntent `json:"intent"`
	CheckoutURL string        `json:"checkout_url"`
	CreatedAt   time.Time     `json:"created_at"`
}

type TransactionStats struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	TotalPaid float64   `json:"total_paid"`
	CreatedAt time.Time `json:"created_at"`
}

type MerchantSettings struct {
	PayoutAccount  string   `json:"payout_account"`
	PayoutBank     string   `json:"payout_bank"`
	WebhookURL     string   `json:"webhook_url"`
	APIKeyPreviews []string `json:"api_key_previews"`
}

type CryptoPrice struct {
	Symbol   string  `json:"symbol"`
	PriceUSD float64 `json:"price_usd"`
	Change24 float64 `json:"change_24h"`
}

type CryptoWallet struct {
	Address string  `json:"address"`
	Chain   string  `json:"chain"`
	Balance float64 `json:"balance"`
	Symbol  string  `json:"symbol"`
}

type CryptoTransaction struct {
	Hash      string    `json:"hash"`
	Symbol    string    `json:"symbol"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

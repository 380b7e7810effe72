package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"checkout-svc/wallet"

	"go.uber.org/zap"
)

var (
	ErrReverted     = errors.New("transaction reverted")
	ErrUnknownToken = errors.New("unsupported token")
)

// PaymentParams is one token payment. Decimals falls back to the token's
// registered default when nil. Recipient overrides the configured recipient
// when set.
type PaymentParams struct {
	Token     string
	Amount    string
	Decimals  *int
	Reference string
	Recipient string
}

type PaymentResult struct {
	Hash    string
	Receipt *Receipt
}

// Orchestrator moves tokens from the connected wallet to the recipient
// through the fixed payment contract. One best-effort attempt per call: at
// most an approval plus the payment, nothing is retried or rolled back.
type Orchestrator struct {
	reader    Reader
	session   wallet.Session
	contract  string
	recipient string
	tokens    map[string]Token
	interval  time.Duration
	logger    *zap.Logger
}

func NewOrchestrator(reader Reader, session wallet.Session, contract, recipient string, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		reader:    reader,
		session:   session,
		contract:  contract,
		recipient: recipient,
		tokens:    DefaultTokens(),
		interval:  2 * time.Second,
		logger:    logger,
	}
}

func (o *Orchestrator) PayWithToken(ctx context.Context, params PaymentParams) (*PaymentResult, error) {
	if o.session == nil || o.reader == nil {
		return nil, wallet.ErrNotConnected
	}

	token, ok := o.tokens[params.Token]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, params.Token)
	}

	decimals := token.Decimals
	if params.Decimals != nil {
		decimals = *params.Decimals
	}
	amount, err := ToBaseUnits(params.Amount, decimals)
	if err != nil {
		return nil, fmt.Errorf("failed to scale amount: %w", err)
	}

	recipient := o.recipient
	if params.Recipient != "" {
		recipient = params.Recipient
	}

	// Non-native tokens go through the allowance/approve dance. The payment
	// must not be submitted until a required approval is mined.
	if !token.Native {
		if err := o.ensureAllowance(ctx, token, amount); err != nil {
			return nil, err
		}
	}

	data, err := payWithTokenCallData(token.Address, amount, recipient, token.Symbol, params.Reference)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment call: %w", err)
	}

	txn := wallet.Txn{To: o.contract, Data: data}
	if token.Native {
		txn.Value = amount
	}

	hash, err := o.session.SendTransaction(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("failed to submit payment: %w", err)
	}

	o.logger.Info("Payment transaction submitted",
		zap.String("token", token.Symbol),
		zap.String("amount", amount.String()),
		zap.String("reference", params.Reference),
		zap.String("hash", hash),
	)

	receipt, err := o.waitMined(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status != ReceiptStatusSuccess {
		return &PaymentResult{Hash: hash, Receipt: receipt}, fmt.Errorf("payment %s: %w", hash, ErrReverted)
	}
	return &PaymentResult{Hash: hash, Receipt: receipt}, nil
}

func (o *Orchestrator) ensureAllowance(ctx context.Context, token Token, required *big.Int) error {
	callData, err := allowanceCallData(o.session.Address(), o.contract)
	if err != nil {
		return err
	}
	out, err := o.reader.CallContract(ctx, token.Address, callData)
	if err != nil {
		return fmt.Errorf("failed to read allowance: %w", err)
	}
	allowance, err := unpackUint(out)
	if err != nil {
		return fmt.Errorf("failed to decode allowance: %w", err)
	}

	if allowance.Cmp(required) >= 0 {
		return nil
	}

	// Exact-amount approval, re-checked on every payment. No unlimited
	// allowance shortcut.
	approveData, err := approveCallData(o.contract, required)
	if err != nil {
		return err
	}
	hash, err := o.session.SendTransaction(ctx, wallet.Txn{To: token.Address, Data: approveData})
	if err != nil {
		return fmt.Errorf("failed to submit approval: %w", err)
	}

	o.logger.Info("Approval transaction submitted",
		zap.String("token", token.Symbol),
		zap.String("amount", required.String()),
		zap.String("hash", hash),
	)

	receipt, err := o.waitMined(ctx, hash)
	if err != nil {
		return err
	}
	if receipt.Status != ReceiptStatusSuccess {
		return fmt.Errorf("approval %s: %w", hash, ErrReverted)
	}
	return nil
}

func (o *Orchestrator) waitMined(ctx context.Context, hash string) (*Receipt, error) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		receipt, err := o.reader.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch receipt for %s: %w", hash, err)
		}
		if receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

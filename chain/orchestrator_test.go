package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"checkout-svc/wallet"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakeReader struct {
	allowance      *big.Int
	allowanceCalls int
	receipts       map[string]*Receipt
}

func (r *fakeReader) CallContract(ctx context.Context, to string, data []byte) ([]byte, error) {
	r.allowanceCalls++
	word, err := packUint(r.allowance)
	if err != nil {
		return nil, err
	}
	return word, nil
}

func (r *fakeReader) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	return r.receipts[hash], nil
}

type fakeSession struct {
	address   string
	sent      []wallet.Txn
	reader    *fakeReader
	payStatus ReceiptStatus
	sendErr   error
}

func (s *fakeSession) Address() string { return s.address }

func (s *fakeSession) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	return nil, nil
}

func (s *fakeSession) SendTransaction(ctx context.Context, txn wallet.Txn) (string, error) {
	if s.sendErr != nil {
		return "", s.sendErr
	}
	s.sent = append(s.sent, txn)
	hash := fmt.Sprintf("0xtx%d", len(s.sent))

	// Approvals always mine successfully; the payment takes the configured
	// status so revert paths can be exercised.
	status := ReceiptStatusSuccess
	if txn.To == paymentContract {
		status = s.payStatus
	}
	s.reader.receipts[hash] = &Receipt{TxHash: hash, Status: status}
	return hash, nil
}

const (
	paymentContract = "0x7a1f8e9c4b2d6a3e5f0c9b8d7e6a5f4c3b2a1d0e"
	recipientAddr   = "0x52908400098527886e0f7030069857d2e4169ee7"
)

func newTestOrchestrator(t *testing.T, allowance *big.Int) (*Orchestrator, *fakeReader, *fakeSession) {
	reader := &fakeReader{
		allowance: allowance,
		receipts:  make(map[string]*Receipt),
	}
	session := &fakeSession{
		address:   "0x1111111111111111111111111111111111111111",
		reader:    reader,
		payStatus: ReceiptStatusSuccess,
	}
	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	o := NewOrchestrator(reader, session, paymentContract, recipientAddr, logger)
	o.interval = time.Millisecond
	return o, reader, session
}

func TestPayWithToken_SufficientAllowance_SinglePaymentTransaction(t *testing.T) {
	o, reader, session := newTestOrchestrator(t, big.NewInt(200000000))

	result, err := o.PayWithToken(context.Background(), PaymentParams{
		Token:     "USDT",
		Amount:    "150",
		Reference: "TX-REF-001",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(session.sent) != 1 {
		t.Fatalf("Expected exactly one transaction, got %d", len(session.sent))
	}
	if session.sent[0].To != paymentContract {
		t.Errorf("Expected payment to go to the payment contract, got %s", session.sent[0].To)
	}
	if reader.allowanceCalls != 1 {
		t.Errorf("Expected one allowance read, got %d", reader.allowanceCalls)
	}
	if result.Hash == "" {
		t.Error("Expected a transaction hash")
	}
	if result.Receipt.Status != ReceiptStatusSuccess {
		t.Errorf("Expected success receipt, got %s", result.Receipt.Status)
	}
}

func TestPayWithToken_ZeroAllowance_ApproveThenPay(t *testing.T) {
	o, _, session := newTestOrchestrator(t, big.NewInt(0))

	_, err := o.PayWithToken(context.Background(), PaymentParams{
		Token:     "USDT",
		Amount:    "150",
		Reference: "TX-REF-002",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(session.sent) != 2 {
		t.Fatalf("Expected two transactions, got %d", len(session.sent))
	}

	tokens := DefaultTokens()
	if session.sent[0].To != tokens["USDT"].Address {
		t.Errorf("Expected first transaction (approve) to the token contract, got %s", session.sent[0].To)
	}
	if session.sent[1].To != paymentContract {
		t.Errorf("Expected second transaction (pay) to the payment contract, got %s", session.sent[1].To)
	}

	// The approval is for the exact required amount: 150 USDT at 6 decimals.
	amount, err := unpackUint(session.sent[0].Data[36:68])
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if amount.String() != "150000000" {
		t.Errorf("Expected approval for 150000000, got %s", amount)
	}
}

func TestPayWithToken_NativeAsset_NoAllowanceCheckAndCarriesValue(t *testing.T) {
	o, reader, session := newTestOrchestrator(t, big.NewInt(0))

	_, err := o.PayWithToken(context.Background(), PaymentParams{
		Token:     "ETH",
		Amount:    "1.5",
		Reference: "TX-REF-003",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if reader.allowanceCalls != 0 {
		t.Errorf("Expected no allowance reads for the native asset, got %d", reader.allowanceCalls)
	}
	if len(session.sent) != 1 {
		t.Fatalf("Expected one transaction, got %d", len(session.sent))
	}
	if session.sent[0].Value == nil || session.sent[0].Value.String() != "1500000000000000000" {
		t.Errorf("Expected value 1.5e18, got %v", session.sent[0].Value)
	}
}

func TestPayWithToken_DecimalsOverride(t *testing.T) {
	o, _, session := newTestOrchestrator(t, big.NewInt(1000000000000))

	override := 8
	_, err := o.PayWithToken(context.Background(), PaymentParams{
		Token:     "USDT",
		Amount:    "150",
		Decimals:  &override,
		Reference: "TX-REF-004",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// 150 at 8 decimals, embedded at the amount slot of payWithToken.
	amount, err := unpackUint(session.sent[0].Data[36:68])
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if amount.String() != "15000000000" {
		t.Errorf("Expected 15000000000, got %s", amount)
	}
}

func TestPayWithToken_RevertedReceipt_ReturnsChainError(t *testing.T) {
	o, _, session := newTestOrchestrator(t, big.NewInt(200000000))
	session.payStatus = ReceiptStatusReverted

	result, err := o.PayWithToken(context.Background(), PaymentParams{
		Token:     "USDT",
		Amount:    "150",
		Reference: "TX-REF-005",
	})
	if !errors.Is(err, ErrReverted) {
		t.Fatalf("Expected ErrReverted, got %v", err)
	}
	if result == nil || result.Receipt.Status != ReceiptStatusReverted {
		t.Error("Expected the reverted receipt to be returned alongside the error")
	}
}

func TestPayWithToken_NoSession_ErrNotConnected(t *testing.T) {
	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	o := NewOrchestrator(&fakeReader{receipts: map[string]*Receipt{}}, nil, paymentContract, recipientAddr, logger)

	_, err := o.PayWithToken(context.Background(), PaymentParams{Token: "USDT", Amount: "10"})
	if !errors.Is(err, wallet.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestPayWithToken_UnknownToken(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, big.NewInt(0))

	_, err := o.PayWithToken(context.Background(), PaymentParams{Token: "DOGE", Amount: "10"})
	if !errors.Is(err, ErrUnknownToken) {
		t.Errorf("Expected ErrUnknownToken, got %v", err)
	}
}

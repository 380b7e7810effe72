package events

import (
	"context"
	"testing"

	"checkout-svc/store"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakeConfirmer struct {
	confirmed []string
	err       error
}

func (f *fakeConfirmer) ConfirmBankTransfer(ctx context.Context, txRef string) error {
	f.confirmed = append(f.confirmed, txRef)
	return f.err
}

func newTestConsumer(t *testing.T, confirmer Confirmer) *ConfirmationConsumer {
	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	return &ConfirmationConsumer{confirmer: confirmer, logger: logger}
}

func TestHandleMessage_ConfirmedTransfer(t *testing.T) {
	confirmer := &fakeConfirmer{}
	consumer := newTestConsumer(t, confirmer)

	msg := kafka.Message{Value: []byte(`{"event_type":"bank_transfer_confirmed","tx_ref":"TXREF-1"}`)}
	if err := consumer.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(confirmer.confirmed) != 1 || confirmer.confirmed[0] != "TXREF-1" {
		t.Errorf("Expected TXREF-1 to be confirmed, got %v", confirmer.confirmed)
	}
}

func TestHandleMessage_OtherEventTypesSkipped(t *testing.T) {
	confirmer := &fakeConfirmer{}
	consumer := newTestConsumer(t, confirmer)

	msg := kafka.Message{Value: []byte(`{"event_type":"payment_success","tx_ref":"TXREF-2"}`)}
	if err := consumer.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(confirmer.confirmed) != 0 {
		t.Errorf("Expected no confirmations, got %v", confirmer.confirmed)
	}
}

func TestHandleMessage_MissingTxRef(t *testing.T) {
	consumer := newTestConsumer(t, &fakeConfirmer{})

	msg := kafka.Message{Value: []byte(`{"event_type":"bank_transfer_confirmed"}`)}
	if err := consumer.handleMessage(context.Background(), msg); err == nil {
		t.Error("Expected error for missing tx_ref")
	}
}

func TestHandleMessage_InvalidJSON(t *testing.T) {
	consumer := newTestConsumer(t, &fakeConfirmer{})

	msg := kafka.Message{Value: []byte(`not json`)}
	if err := consumer.handleMessage(context.Background(), msg); err == nil {
		t.Error("Expected error for invalid payload")
	}
}

func TestHandleMessage_ExpiredSessionIgnored(t *testing.T) {
	confirmer := &fakeConfirmer{err: store.ErrNotFound}
	consumer := newTestConsumer(t, confirmer)

	msg := kafka.Message{Value: []byte(`{"event_type":"bank_transfer_confirmed","tx_ref":"TXREF-3"}`)}
	if err := consumer.handleMessage(context.Background(), msg); err != nil {
		t.Errorf("Expected expired sessions to be ignored, got %v", err)
	}
}

package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"checkout-svc/chain"
	"checkout-svc/gateway"
	"checkout-svc/middleware"
	"checkout-svc/models"
	"checkout-svc/store"
	"checkout-svc/wallet"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type Gateway interface {
	CreatePayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.PaymentResponse, error)
}

type TokenPayer interface {
	PayWithToken(ctx context.Context, params chain.PaymentParams) (*chain.PaymentResult, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.CheckoutEvent) error
}

// SubmitRequest carries the customer's submission. Token fields only matter
// for the crypto method.
type SubmitRequest struct {
	Customer      models.CustomerInfo `json:"customer"`
	Token         string              `json:"token"`
	TokenDecimals *int                `json:"token_decimals"`
}

// Service drives checkout sessions through the per-method state machine. A
// session-level lock rejects concurrent submissions, and the session's tx_ref
// is the idempotency reference sent to the gateway and the chain.
type Service struct {
	store  store.Store
	gw     Gateway
	payer  TokenPayer
	events EventPublisher
	logger *zap.Logger
}

func NewService(st store.Store, gw Gateway, payer TokenPayer, events EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		gw:     gw,
		payer:  payer,
		events: events,
		logger: logger,
	}
}

func (s *Service) CreateSession(ctx context.Context, intent models.PaymentIntent) (*models.CheckoutSession, error) {
	now := time.Now().UTC()
	sess := &models.CheckoutSession{
		ID:        uuid.NewString(),
		TxRef:     "TXREF-" + uuid.NewString(),
		Intent:    intent,
		Status:    models.CheckoutStatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	middleware.RecordSessionCreated()
	s.logger.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("tx_ref", sess.TxRef),
		zap.String("order_id", intent.OrderID),
		zap.Float64("amount", intent.Amount),
	)
	return sess, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*models.CheckoutSession, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) SelectMethod(ctx context.Context, id string, method models.PaymentMethod) (*models.CheckoutSession, error) {
	if !validMethod(method) {
		return nil, fmt.Errorf("unknown payment method: %s", method)
	}

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.CheckoutStatusSuccess {
		return nil, ErrSessionCompleted
	}

	selectMethod(sess, method)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Submit runs one payment attempt. Precondition failures (validation, a
// submission already in flight, missing wallet) come back as errors; payment
// failures land in the session itself as an idle state with an error string.
func (s *Service) Submit(ctx context.Context, id string, req SubmitRequest) (*models.CheckoutSession, error) {
	ctx, span := otel.Tracer("checkout-svc").Start(ctx, "SubmitPayment")
	defer span.End()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.CheckoutStatusSuccess {
		return nil, ErrSessionCompleted
	}
	if sess.Method == "" {
		return nil, ErrNoMethodSelected
	}
	if err := validateSubmit(sess, req.Customer); err != nil {
		return nil, err
	}
	if sess.Method == models.PaymentMethodCrypto && s.payer == nil {
		return nil, wallet.ErrNotConnected
	}

	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("payment.method", string(sess.Method)),
		attribute.Float64("payment.amount", sess.Intent.Amount),
	)

	ok, err := s.store.AcquireLock(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPaymentInFlight
	}
	defer func() {
		if err := s.store.ReleaseLock(ctx, sess.ID); err != nil {
			s.logger.Error("Failed to release submission lock", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}()

	beginProcessing(sess, req.Customer)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	switch sess.Method {
	case models.PaymentMethodCard:
		s.submitCard(ctx, sess)
	case models.PaymentMethodBankTransfer:
		s.submitBankTransfer(ctx, sess)
	case models.PaymentMethodCrypto:
		s.submitCrypto(ctx, sess, req)
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	middleware.RecordPaymentProcessed(string(sess.Method), string(sess.Status))
	return sess, nil
}

func (s *Service) submitCard(ctx context.Context, sess *models.CheckoutSession) {
	resp, err := s.gw.CreatePayment(ctx, gateway.PaymentRequest{
		Amount:   sess.Intent.Amount,
		Currency: sess.Intent.Currency,
		Method:   models.PaymentMethodCard,
		Customer: sess.Customer,
		TxRef:    sess.TxRef,
	})
	if err != nil {
		fail(sess, userMessage(err))
		s.publish(ctx, sess, "checkout_failed")
		return
	}

	sess.CheckoutURL = resp.CheckoutURL
	sess.Status = models.CheckoutStatusRedirecting
	sess.UpdatedAt = time.Now().UTC()
	s.logger.Info("Card checkout redirecting",
		zap.String("session_id", sess.ID),
		zap.String("tx_ref", sess.TxRef),
	)
}

func (s *Service) submitBankTransfer(ctx context.Context, sess *models.CheckoutSession) {
	resp, err := s.gw.CreatePayment(ctx, gateway.PaymentRequest{
		Amount:   sess.Intent.Amount,
		Currency: sess.Intent.Currency,
		Method:   models.PaymentMethodBankTransfer,
		Customer: sess.Customer,
		TxRef:    sess.TxRef,
	})
	if err != nil {
		fail(sess, userMessage(err))
		s.publish(ctx, sess, "checkout_failed")
		return
	}

	sess.BankDetails = resp.Bank
	sess.Status = models.CheckoutStatusAwaitingPayment
	sess.UpdatedAt = time.Now().UTC()
	s.publish(ctx, sess, "bank_transfer_initiated")
	s.logger.Info("Bank transfer awaiting payment",
		zap.String("session_id", sess.ID),
		zap.String("tx_ref", sess.TxRef),
	)
}

func (s *Service) submitCrypto(ctx context.Context, sess *models.CheckoutSession, req SubmitRequest) {
	token := req.Token
	if token == "" {
		token = string(sess.Intent.Currency)
	}

	result, err := s.payer.PayWithToken(ctx, chain.PaymentParams{
		Token:     token,
		Amount:    strconv.FormatFloat(sess.Intent.Amount, 'f', -1, 64),
		Decimals:  req.TokenDecimals,
		Reference: sess.TxRef,
	})
	if result != nil {
		sess.TxHash = result.Hash
	}
	if err != nil {
		fail(sess, userMessage(err))
		s.publish(ctx, sess, "checkout_failed")
		s.logger.Warn("Crypto payment failed",
			zap.String("session_id", sess.ID),
			zap.String("tx_ref", sess.TxRef),
			zap.Error(err),
		)
		return
	}

	succeed(sess)
	s.publish(ctx, sess, "checkout_completed")
	s.logger.Info("Crypto payment confirmed",
		zap.String("session_id", sess.ID),
		zap.String("tx_ref", sess.TxRef),
		zap.String("tx_hash", sess.TxHash),
	)
}

// ConfirmBankTransfer is invoked by the confirmation consumer when the
// backend reports an inbound settlement for a tx_ref. It is idempotent:
// sessions not awaiting payment are left untouched.
func (s *Service) ConfirmBankTransfer(ctx context.Context, txRef string) error {
	sess, err := s.store.GetByTxRef(ctx, txRef)
	if err != nil {
		return err
	}
	if sess.Status != models.CheckoutStatusAwaitingPayment {
		s.logger.Debug("Ignoring confirmation for session not awaiting payment",
			zap.String("session_id", sess.ID),
			zap.String("status", string(sess.Status)),
		)
		return nil
	}

	succeed(sess)
	if err := s.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	middleware.RecordPaymentProcessed(string(models.PaymentMethodBankTransfer), string(sess.Status))
	s.publish(ctx, sess, "checkout_completed")
	s.logger.Info("Bank transfer confirmed",
		zap.String("session_id", sess.ID),
		zap.String("tx_ref", txRef),
	)
	return nil
}

func (s *Service) publish(ctx context.Context, sess *models.CheckoutSession, eventType string) {
	if s.events == nil {
		return
	}
	event := models.CheckoutEvent{
		SessionID: sess.ID,
		TxRef:     sess.TxRef,
		Method:    sess.Method,
		Status:    sess.Status,
		Amount:    sess.Intent.Amount,
		Currency:  sess.Intent.Currency,
		EventType: eventType,
		TxHash:    sess.TxHash,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		// Events are advisory; the checkout outcome stands either way.
		s.logger.Error("Failed to publish checkout event",
			zap.String("session_id", sess.ID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// userMessage keeps backend/gateway messages verbatim and flattens everything
// else to the wrapped cause.
func userMessage(err error) string {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return gwErr.Message
	}
	return err.Error()
}

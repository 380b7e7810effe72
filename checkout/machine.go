package checkout

import (
	"errors"
	"fmt"
	"time"

	"checkout-svc/models"
)

var (
	ErrPaymentInFlight  = errors.New("a payment for this session is already in flight")
	ErrNoMethodSelected = errors.New("no payment method selected")
	ErrSessionCompleted = errors.New("checkout session already completed")
)

// ValidationError reports missing customer fields. It is raised before any
// network or chain call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func validMethod(method models.PaymentMethod) bool {
	switch method {
	case models.PaymentMethodCard, models.PaymentMethodCrypto, models.PaymentMethodBankTransfer:
		return true
	}
	return false
}

// selectMethod resets the machine to idle and clears the other methods'
// transient state. Switching methods always starts over.
func selectMethod(sess *models.CheckoutSession, method models.PaymentMethod) {
	sess.Method = method
	sess.Status = models.CheckoutStatusIdle
	sess.BankDetails = nil
	sess.CheckoutURL = ""
	sess.TxHash = ""
	sess.Error = ""
	sess.UpdatedAt = time.Now().UTC()
}

// validateSubmit guards the idle -> processing transition. Card and bank
// transfer need the customer's contact fields; the crypto path is validated
// against the wallet session in the service.
func validateSubmit(sess *models.CheckoutSession, customer models.CustomerInfo) error {
	if sess.Method == models.PaymentMethodCrypto {
		return nil
	}
	if customer.Name == "" {
		return &ValidationError{Field: "name"}
	}
	if customer.Email == "" {
		return &ValidationError{Field: "email"}
	}
	if customer.Phone == "" {
		return &ValidationError{Field: "phone"}
	}
	return nil
}

func beginProcessing(sess *models.CheckoutSession, customer models.CustomerInfo) {
	sess.Status = models.CheckoutStatusProcessing
	sess.Customer = customer
	sess.Error = ""
	sess.UpdatedAt = time.Now().UTC()
}

// fail returns the machine to idle with a user-visible error. idle doubles as
// the recovery state; the customer may simply resubmit.
func fail(sess *models.CheckoutSession, message string) {
	sess.Status = models.CheckoutStatusIdle
	sess.Error = message
	sess.UpdatedAt = time.Now().UTC()
}

func succeed(sess *models.CheckoutSession) {
	sess.Status = models.CheckoutStatusSuccess
	sess.Error = ""
	sess.UpdatedAt = time.Now().UTC()
}

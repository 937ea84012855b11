package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"momskitchen/internal/api"
	"momskitchen/internal/cart"
	"momskitchen/internal/models"
	"momskitchen/internal/security"
)

var (
	ErrNoAddress          = errors.New("no delivery address selected")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOrderingClosed     = errors.New("ordering window closed")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrNoClientSecret     = errors.New("payment client secret missing")
	ErrPaymentCancelled   = errors.New("payment cancelled")
	ErrVerificationFailed = errors.New("payment verification failed")
)

const (
	noAddressMessage      = "Please select a delivery address."
	emptyCartMessage      = "Please add items to your cart."
	orderingClosedMessage = "We are currently not accepting orders."
	orderFailedMessage    = "Failed to place order. Please try again."
	noClientSecretMessage = "Stripe client secret not received."
	paymentFailedMessage  = "Payment was not completed."
	contactSupportMessage = "Please contact support."
	paymentErrorMessage   = "Unable to process payment."
)

// OrderingGate reports whether orders are currently accepted
type OrderingGate interface {
	Open() bool
}

// PaymentHandle is what the backend issues for an online payment
type PaymentHandle struct {
	ClientSecret    string
	PaymentIntentID string
	Amount          decimal.Decimal
}

// PaymentConfirmer runs the customer-facing payment step. A nil error means the
// customer completed it; ErrPaymentCancelled means they backed out.
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, handle PaymentHandle) error
}

// Escalator is told about payments that were taken but could not be verified
type Escalator interface {
	ReportUnverifiedPayment(ctx context.Context, incident PaymentIncident) error
}

// PaymentIncident describes a payment that needs a human to look at it
type PaymentIncident struct {
	PaymentIntentID string
	UserID          string
	Phone           string
	Amount          decimal.Decimal
	Reason          string
}

// Outcome is how a checkout ended
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
)

// CheckoutRequest is the customer's checkout choices
type CheckoutRequest struct {
	AddressID           string
	Method              models.PaymentMethod
	SpecialInstructions string
}

// CheckoutResult is a successful checkout
type CheckoutResult struct {
	Outcome         Outcome
	Method          models.PaymentMethod
	PaymentIntentID string
	Message         string
}

// Summary is the price breakdown shown before checkout
type Summary struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// CheckoutConfig holds the pricing used for the summary
type CheckoutConfig struct {
	DeliveryFee decimal.Decimal
	TaxRate     decimal.Decimal
}

// ParseCheckoutConfig reads the fee and tax rate from their configured strings
func ParseCheckoutConfig(deliveryFee, taxRate string) (CheckoutConfig, error) {
	fee, err := decimal.NewFromString(strings.TrimSpace(deliveryFee))
	if err != nil {
		return CheckoutConfig{}, fmt.Errorf("invalid delivery fee %q: %w", deliveryFee, err)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(taxRate))
	if err != nil {
		return CheckoutConfig{}, fmt.Errorf("invalid tax rate %q: %w", taxRate, err)
	}
	return CheckoutConfig{DeliveryFee: fee, TaxRate: rate}, nil
}

// CheckoutService turns the cart into an order
type CheckoutService struct {
	client    *api.Client
	cart      *cart.Store
	gate      OrderingGate
	confirmer PaymentConfirmer
	escalator Escalator
	pricing   CheckoutConfig
	userID    func() (id, phone string)
	busy      atomic.Bool
	log       logrus.FieldLogger
}

// CheckoutOption customises a CheckoutService
type CheckoutOption func(*CheckoutService)

// WithPaymentConfirmer enables online payment
func WithPaymentConfirmer(c PaymentConfirmer) CheckoutOption {
	return func(s *CheckoutService) { s.confirmer = c }
}

// WithEscalator reports unverified payments to support
func WithEscalator(e Escalator) CheckoutOption {
	return func(s *CheckoutService) { s.escalator = e }
}

// WithCustomer tells the service who is checking out, for support reports
func WithCustomer(fn func() (id, phone string)) CheckoutOption {
	return func(s *CheckoutService) { s.userID = fn }
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(client *api.Client, cartStore *cart.Store, gate OrderingGate, pricing CheckoutConfig, log logrus.FieldLogger, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		client:  client,
		cart:    cartStore,
		gate:    gate,
		pricing: pricing,
		userID:  func() (string, string) { return "", "" },
		log:     log.WithField("component", "checkout"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary prices the current cart
func (s *CheckoutService) Summary() Summary {
	subtotal := s.cart.Total()
	tax := subtotal.Mul(s.pricing.TaxRate).Round(2)
	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: s.pricing.DeliveryFee,
		Tax:         tax,
		Total:       subtotal.Add(s.pricing.DeliveryFee).Add(tax),
	}
}

// Busy reports whether a checkout is in flight
func (s *CheckoutService) Busy() bool {
	return s.busy.Load()
}

// Checkout submits the cart. The cart is cleared only once the order is confirmed;
// on any failure it is left as it was.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if req.AddressID == "" {
		return nil, &UserError{Message: noAddressMessage, Err: ErrNoAddress}
	}
	if s.cart.IsEmpty() {
		return nil, &UserError{Message: emptyCartMessage, Err: ErrEmptyCart}
	}
	if s.gate != nil && !s.gate.Open() {
		return nil, &UserError{Message: orderingClosedMessage, Err: ErrOrderingClosed}
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInProgress
	}
	defer s.busy.Store(false)

	method := req.Method
	if method == "" {
		method = models.PaymentCOD
	}

	lines := s.cart.Items()
	payload := BuildOrderRequest(lines, req.AddressID, req.SpecialInstructions, method)
	summary := s.Summary()
	log := s.log.WithFields(logrus.Fields{
		"method": method,
		"lines":  len(payload.Orders),
		"total":  summary.Total.StringFixed(2),
	})

	switch method {
	case models.PaymentOnline:
		return s.payOnline(ctx, payload, summary.Total, log)
	case models.PaymentCOD:
		return s.payOnDelivery(ctx, payload, log)
	default:
		return nil, fmt.Errorf("unsupported payment method %q", method)
	}
}

func (s *CheckoutService) payOnDelivery(ctx context.Context, payload models.CreateOrderRequest, log logrus.FieldLogger) (*CheckoutResult, error) {
	resp, err := s.client.Orders().Create(ctx, payload, security.GenerateIdempotencyKey())
	if err != nil {
		log.WithError(err).Warn("Order submission failed")
		return nil, userError(err, orderFailedMessage)
	}
	if resp.Status != "success" {
		log.WithField("status", resp.Status).Warn("Order not accepted")
		msg := resp.Message
		if msg == "" {
			msg = orderFailedMessage
		}
		return nil, &UserError{Message: msg}
	}

	s.cart.Clear()
	log.Info("Order placed")
	return &CheckoutResult{
		Outcome: OutcomeConfirmed,
		Method:  models.PaymentCOD,
		Message: "Your COD order has been placed successfully!",
	}, nil
}

func (s *CheckoutService) payOnline(ctx context.Context, payload models.CreateOrderRequest, amount decimal.Decimal, log logrus.FieldLogger) (*CheckoutResult, error) {
	if s.confirmer == nil {
		return nil, &UserError{Message: paymentErrorMessage, Err: errors.New("online payment is not available")}
	}

	resp, err := s.client.Orders().Create(ctx, payload, security.GenerateIdempotencyKey())
	if err != nil {
		log.WithError(err).Warn("Order submission failed")
		return nil, userError(err, paymentErrorMessage)
	}
	if resp.ClientSecret == "" {
		return nil, &UserError{Message: noClientSecretMessage, Err: ErrNoClientSecret}
	}

	intentID := resp.PaymentIntentID
	log = log.WithField("payment_intent_id", intentID)

	handle := PaymentHandle{ClientSecret: resp.ClientSecret, PaymentIntentID: intentID, Amount: amount}
	if err := s.confirmer.ConfirmPayment(ctx, handle); err != nil {
		log.WithError(err).Info("Payment step did not complete")
		// The order must not stay pending payment
		if failErr := s.client.Payments().Fail(context.WithoutCancel(ctx), intentID); failErr != nil {
			log.WithError(failErr).Warn("Failed to report payment failure")
		}
		msg := paymentFailedMessage
		if !errors.Is(err, ErrPaymentCancelled) && err.Error() != "" {
			msg = err.Error()
		}
		return nil, &UserError{Message: msg, Err: err}
	}

	verified, err := s.client.Payments().Verify(ctx, intentID)
	if err != nil || !verified.Success {
		reason := "backend did not confirm the payment"
		if err != nil {
			reason = err.Error()
		} else if verified.Message != "" {
			reason = verified.Message
		}
		log.WithField("reason", reason).Error("Payment verification failed")
		s.escalate(ctx, intentID, amount, reason, log)
		return nil, &UserError{Message: contactSupportMessage, Err: ErrVerificationFailed}
	}

	s.cart.Clear()
	log.Info("Payment verified, order confirmed")
	return &CheckoutResult{
		Outcome:         OutcomeConfirmed,
		Method:          models.PaymentOnline,
		PaymentIntentID: intentID,
		Message:         "Your order has been confirmed!",
	}, nil
}

func (s *CheckoutService) escalate(ctx context.Context, intentID string, amount decimal.Decimal, reason string, log logrus.FieldLogger) {
	if s.escalator == nil {
		return
	}
	id, phone := s.userID()
	incident := PaymentIncident{
		PaymentIntentID: intentID,
		UserID:          id,
		Phone:           phone,
		Amount:          amount,
		Reason:          reason,
	}
	if err := s.escalator.ReportUnverifiedPayment(context.WithoutCancel(ctx), incident); err != nil {
		log.WithError(err).Warn("Failed to notify support")
	}
}

// BuildOrderRequest makes one order line per distinct cart entry
func BuildOrderRequest(lines []models.CartLine, addressID, instructions string, method models.PaymentMethod) models.CreateOrderRequest {
	orders := make([]models.OrderLine, 0, len(lines))
	for _, l := range lines {
		orders = append(orders, models.OrderLine{MenuID: l.ID, Items: l.Quantity})
	}
	return models.CreateOrderRequest{
		Orders:              orders,
		DeliveryAddressID:   addressID,
		SpecialInstructions: strings.TrimSpace(instructions),
		PaymentMethod:       method,
	}
}

package models

import (
	"github.com/shopspring/decimal"
)

// Order status values reported by the backend
const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// Payment status values reported by the backend
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// PaymentMethod selects the checkout flow
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

// Order is an order as listed by GET /api/orders
type Order struct {
	ID              string          `json:"_id"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	Tax             decimal.Decimal `json:"tax"`
	RefundAmount    decimal.Decimal `json:"refund_amount"`
	Menu            *MomRef         `json:"menu_id,omitempty"`
	DeliveryAddress *Address        `json:"delivery_address,omitempty"`
	CreatedAt       string          `json:"createdAt,omitempty"`
}

// MenuName returns the menu's name or a generic label
func (o Order) MenuName() string {
	if o.Menu != nil && o.Menu.Name != "" {
		return o.Menu.Name
	}
	return "Menu"
}

// ShortID returns the last six characters of the order id for display
func (o Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[len(o.ID)-6:]
}

// OrderLine is one entry of the create-order payload
type OrderLine struct {
	MenuID string `json:"menu_id"`
	Items  int    `json:"items"`
}

// CreateOrderRequest is the body of POST /api/orders
type CreateOrderRequest struct {
	Orders              []OrderLine   `json:"orders"`
	DeliveryAddressID   string        `json:"delivery_address_id"`
	SpecialInstructions string        `json:"special_instructions"`
	PaymentMethod       PaymentMethod `json:"payment_method,omitempty"`
}

// CreateOrderResponse is the envelope returned by POST /api/orders.
// ClientSecret and PaymentIntentID are only present for online payment.
type CreateOrderResponse struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// VerifyPaymentResponse is the envelope returned by verify-payment
type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"momskitchen/internal/api"
	"momskitchen/internal/models"
)

const orderListLimit = 50

var (
	ErrCancellationClosed = errors.New("cancellation window closed")
	ErrNotCancellable     = errors.New("order cannot be cancelled")
)

// Order list tabs
const (
	TabPending   = "pending"
	TabDelivered = models.OrderStatusDelivered
	TabCancelled = models.OrderStatusCancelled
)

// pendingStatuses are the statuses grouped under the pending tab
var pendingStatuses = map[string]bool{
	models.OrderStatusPending:        true,
	models.OrderStatusConfirmed:      true,
	models.OrderStatusPreparing:      true,
	models.OrderStatusOutForDelivery: true,
}

// OrderService lists and cancels the customer's orders
type OrderService struct {
	client *api.Client
	gate   OrderingGate
	log    logrus.FieldLogger
}

// NewOrderService creates a new order service. gate decides when cancelling is allowed.
func NewOrderService(client *api.Client, gate OrderingGate, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		client: client,
		gate:   gate,
		log:    log.WithField("component", "orders"),
	}
}

// List returns the customer's recent orders
func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.client.Orders().List(ctx, orderListLimit)
	if err != nil {
		return nil, userError(err, "Failed to load orders")
	}
	return orders, nil
}

// Get returns one order
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.client.Orders().Get(ctx, id)
	if err != nil {
		return nil, userError(err, "Failed to load order")
	}
	return order, nil
}

// Cancel cancels a pending or confirmed order while the cancellation window is open.
// It returns the order as the backend reports it afterwards.
func (s *OrderService) Cancel(ctx context.Context, order models.Order) (*models.Order, error) {
	if s.gate != nil && !s.gate.Open() {
		return nil, &UserError{Message: "Cancellations are only allowed during ordering hours.", Err: ErrCancellationClosed}
	}
	if !CanCancel(order) {
		return nil, &UserError{Message: "This order can no longer be cancelled.", Err: ErrNotCancellable}
	}

	updated, err := s.client.Orders().Cancel(ctx, order.ID)
	if err != nil {
		return nil, userError(err, "Failed to cancel order")
	}

	result := order
	if updated != nil {
		result = *updated
		if result.ID == "" {
			result.ID = order.ID
		}
	}
	result.Status = models.OrderStatusCancelled

	s.log.WithField("order_id", order.ID).Info("Order cancelled")
	return &result, nil
}

// CanCancel reports whether the order's status still allows cancelling
func CanCancel(o models.Order) bool {
	return o.Status == models.OrderStatusPending || o.Status == models.OrderStatusConfirmed
}

// FilterByTab keeps the orders shown under tab. The pending tab covers every
// order that is still on its way.
func FilterByTab(orders []models.Order, tab string) []models.Order {
	var out []models.Order
	for _, o := range orders {
		if tab == TabPending {
			if pendingStatuses[o.Status] {
				out = append(out, o)
			}
			continue
		}
		if o.Status == tab {
			out = append(out, o)
		}
	}
	return out
}

// RefundEstimate is what a paid order returns on cancellation
type RefundEstimate struct {
	Total   decimal.Decimal
	Penalty decimal.Decimal
	Refund  decimal.Decimal
}

// EstimateRefund returns the refund for cancelling a paid order: the total minus the
// delivery fee and tax. Unpaid orders get nothing back and report false.
func EstimateRefund(o models.Order) (RefundEstimate, bool) {
	if o.PaymentStatus != models.PaymentStatusPaid {
		return RefundEstimate{}, false
	}
	penalty := o.DeliveryFee.Add(o.Tax)
	return RefundEstimate{
		Total:   o.TotalAmount,
		Penalty: penalty,
		Refund:  o.TotalAmount.Sub(penalty),
	}, true
}

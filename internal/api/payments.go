package api

import (
	"context"
	"net/http"

	"momskitchen/internal/models"
)

// PaymentsAPI covers /api/payments
type PaymentsAPI struct {
	c *Client
}

func (c *Client) Payments() *PaymentsAPI { return &PaymentsAPI{c: c} }

type paymentIntentBody struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

// Verify asks the backend whether the payment intent actually succeeded
func (p *PaymentsAPI) Verify(ctx context.Context, paymentIntentID string) (*models.VerifyPaymentResponse, error) {
	resp, err := p.c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/payments/verify-payment",
		Body:   paymentIntentBody{PaymentIntentID: paymentIntentID},
	})
	if err != nil {
		return nil, err
	}

	var out models.VerifyPaymentResponse
	if err := resp.Decode("", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fail reports that the customer's payment step failed or was cancelled
func (p *PaymentsAPI) Fail(ctx context.Context, paymentIntentID string) error {
	_, err := p.c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/payments/fail-payment",
		Body:   paymentIntentBody{PaymentIntentID: paymentIntentID},
	})
	return err
}

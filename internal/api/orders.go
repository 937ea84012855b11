package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"momskitchen/internal/models"
)

// OrdersAPI covers /api/orders
type OrdersAPI struct {
	c *Client
}

func (c *Client) Orders() *OrdersAPI { return &OrdersAPI{c: c} }

func (o *OrdersAPI) List(ctx context.Context, limit int) ([]models.Order, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	resp, err := o.c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/orders", Query: query})
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	if err := resp.Decode("data.orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (o *OrdersAPI) Get(ctx context.Context, id string) (*models.Order, error) {
	resp, err := o.c.Do(ctx, Request{Method: http.MethodGet, Path: orderPath(id)})
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := resp.Decode(orderEnvelope(resp), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create submits an order. idempotencyKey lets the backend drop a duplicate of
// the same submission.
func (o *OrdersAPI) Create(ctx context.Context, req models.CreateOrderRequest, idempotencyKey string) (*models.CreateOrderResponse, error) {
	header := http.Header{}
	if idempotencyKey != "" {
		header.Set(headerIdemKey, idempotencyKey)
	}

	resp, err := o.c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/orders", Body: req, Header: header})
	if err != nil {
		return nil, err
	}

	var out models.CreateOrderResponse
	if err := resp.Decode("", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel cancels an order and returns the updated order when the backend sends one
func (o *OrdersAPI) Cancel(ctx context.Context, id string) (*models.Order, error) {
	resp, err := o.c.Do(ctx, Request{Method: http.MethodPut, Path: orderPath(id) + "/cancel"})
	if err != nil {
		return nil, err
	}

	path := orderEnvelope(resp)
	if !resp.Get(path).IsObject() {
		return nil, nil
	}
	var order models.Order
	if err := resp.Decode(path, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// orderEnvelope returns where a single order sits in resp: data.order, or data itself
func orderEnvelope(resp *Response) string {
	if resp.Get("data.order").IsObject() {
		return "data.order"
	}
	return "data"
}

func orderPath(id string) string {
	return "/api/orders/" + url.PathEscape(id)
}

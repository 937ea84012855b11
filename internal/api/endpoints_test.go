package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momskitchen/internal/models"
)

type recorded struct {
	method string
	path   string
	query  string
	header http.Header
	body   map[string]any
}

func recordingServer(t *testing.T, reply string) (*Client, func() []recorded) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, header: r.Header.Clone()}
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()
		writeJSON(w, http.StatusOK, reply)
	})
	return newTestClient(t, handler, &fakeTokens{access: "tok"}), func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), calls...)
	}
}

func TestLoginDecodesCredentials(t *testing.T) {
	c, calls := recordingServer(t, `{"status":"success","data":{"accessToken":"a","refreshToken":"r","user":{"_id":"u1","name":"Asha","is_active":true}}}`)

	res, err := c.Auth().Login(context.Background(), "9876543210", "123456")
	require.NoError(t, err)

	assert.Equal(t, "a", res.AccessToken)
	assert.Equal(t, "r", res.RefreshToken)
	assert.True(t, res.User.IsActive)
	assert.Equal(t, map[string]any{"phone_number": "9876543210", "otp": "123456"}, calls()[0].body)
}

func TestSettingsGet(t *testing.T) {
	c, _ := recordingServer(t, `{"data":{"settings":{"orderingWindows":[{"start":"09:00","end":"12:00"}]}}}`)
	settings, err := c.Settings().Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, []models.OrderingWindow{{Start: "09:00", End: "12:00"}}, settings.OrderingWindows)

	c, _ = recordingServer(t, `{"data":{}}`)
	settings, err = c.Settings().Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestMenusListAcceptsBothEnvelopes(t *testing.T) {
	for _, reply := range []string{
		`{"data":{"menus":[{"_id":"m1","total_cost":120,"max_orders":5}]}}`,
		`{"menus":[{"_id":"m1","total_cost":120,"max_orders":5}]}`,
	} {
		c, calls := recordingServer(t, reply)
		menus, err := c.Menus().List(context.Background(), 20)
		require.NoError(t, err)
		require.Len(t, menus, 1)
		assert.Equal(t, "120", menus[0].TotalCost.String())
		assert.Equal(t, "limit=20", calls()[0].query)
	}
}

func TestOrdersCreateSendsIdempotencyKey(t *testing.T) {
	c, calls := recordingServer(t, `{"status":"success","clientSecret":"cs_1","paymentIntentId":"pi_1"}`)

	out, err := c.Orders().Create(context.Background(), models.CreateOrderRequest{
		Orders:            []models.OrderLine{{MenuID: "m1", Items: 2}},
		DeliveryAddressID: "a1",
	}, "key-1")
	require.NoError(t, err)

	assert.Equal(t, "cs_1", out.ClientSecret)
	assert.Equal(t, "pi_1", out.PaymentIntentID)
	assert.Equal(t, "key-1", calls()[0].header.Get("Idempotency-Key"))
	assert.Equal(t, "a1", calls()[0].body["delivery_address_id"])
}

func TestEndpointMethodsAndPaths(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		call   func(c *Client) error
		method string
		path   string
	}{
		{name: "cancel order", call: func(c *Client) error { _, err := c.Orders().Cancel(ctx, "o1"); return err }, method: http.MethodPut, path: "/api/orders/o1/cancel"},
		{name: "toggle default", call: func(c *Client) error { return c.Users().ToggleDefaultAddress(ctx, "a1") }, method: http.MethodPatch, path: "/api/users/addresses/a1"},
		{name: "delete address", call: func(c *Client) error { return c.Users().DeleteAddress(ctx, "a1") }, method: http.MethodDelete, path: "/api/users/addresses/a1"},
		{name: "update address", call: func(c *Client) error { return c.Users().UpdateAddress(ctx, "a1", models.Address{}) }, method: http.MethodPut, path: "/api/users/addresses/a1"},
		{name: "add address", call: func(c *Client) error { return c.Users().AddAddress(ctx, models.Address{}) }, method: http.MethodPost, path: "/api/users/addresses"},
		{name: "preferences", call: func(c *Client) error { return c.Users().AddPreferences(ctx, models.Preferences{VegPref: "veg"}) }, method: http.MethodPost, path: "/api/users/preferences"},
		{name: "update profile", call: func(c *Client) error { return c.Users().UpdateProfile(ctx, ProfileUpdate{Name: "A"}) }, method: http.MethodPut, path: "/api/users/me"},
		{name: "fail payment", call: func(c *Client) error { return c.Payments().Fail(ctx, "pi_1") }, method: http.MethodPost, path: "/api/payments/fail-payment"},
		{name: "verify payment", call: func(c *Client) error { _, err := c.Payments().Verify(ctx, "pi_1"); return err }, method: http.MethodPost, path: "/api/payments/verify-payment"},
		{name: "signup", call: func(c *Client) error { return c.Auth().Signup(ctx, SignupRequest{Name: "A", PhoneNumber: "1", Role: "customer"}) }, method: http.MethodPost, path: "/api/auth/signup"},
		{name: "logout", call: func(c *Client) error { return c.Auth().Logout(ctx) }, method: http.MethodPost, path: "/api/auth/logout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := recordingServer(t, `{"status":"success"}`)
			require.NoError(t, tt.call(c))
			require.Len(t, calls(), 1)
			assert.Equal(t, tt.method, calls()[0].method)
			assert.Equal(t, tt.path, calls()[0].path)
		})
	}
}

func TestOrdersCancelAcceptsBothEnvelopes(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  bool
	}{
		{name: "nested order", reply: `{"status":"success","data":{"order":{"_id":"o1","status":"cancelled","payment_status":"paid","total_amount":467,"refund_amount":300}}}`, want: true},
		{name: "flat order", reply: `{"status":"success","data":{"_id":"o1","status":"cancelled","payment_status":"paid","total_amount":467,"refund_amount":300}}`, want: true},
		{name: "no order", reply: `{"status":"success","message":"Order cancelled"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := recordingServer(t, tt.reply)
			order, err := c.Orders().Cancel(context.Background(), "o1")
			require.NoError(t, err)
			if !tt.want {
				assert.Nil(t, order)
				return
			}
			require.NotNil(t, order)
			assert.Equal(t, "o1", order.ID)
			assert.Equal(t, "paid", order.PaymentStatus)
			assert.Equal(t, "467", order.TotalAmount.String())
			assert.Equal(t, "300", order.RefundAmount.String())
		})
	}
}

func TestPreferencesOmitEmptyFavDishes(t *testing.T) {
	c, calls := recordingServer(t, `{"status":"success"}`)
	require.NoError(t, c.Users().AddPreferences(context.Background(), models.Preferences{VegPref: "veg", Authenticity: "Any"}))

	_, sent := calls()[0].body["fav_dishes"]
	assert.False(t, sent)
}

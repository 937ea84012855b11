package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momskitchen/internal/logging"
	"momskitchen/internal/models"
)

const twoAddresses = `{"data":{"user":{"_id":"u1"},"addresses":[
	{"_id":"a1","address_line":"1 MG Road","city":"Pune","state":"MH","pincode":"411001","is_default":true},
	{"_id":"a2","address_line":"2 FC Road","city":"Pune","state":"MH","pincode":"411004"}]}}`

func validAddress() models.Address {
	return models.Address{AddressLine: "1 MG Road", City: "Pune", State: "MH", Pincode: "411001"}
}

func TestAddAddress(t *testing.T) {
	tests := []struct {
		name        string
		me          string
		wantDefault bool
	}{
		{name: "first address becomes default", me: `{"data":{"user":{"_id":"u1"},"addresses":[]}}`, wantDefault: true},
		{name: "later addresses do not", me: twoAddresses, wantDefault: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend()
			b.handle("GET /api/users/me", http.StatusOK, tt.me)
			b.handle("POST /api/users/addresses", http.StatusCreated, `{"status":"success"}`)
			h := newHarness(t, b)
			h.login(t)
			svc := NewAddressService(h.client, logging.Discard())

			require.NoError(t, svc.Add(context.Background(), validAddress()))

			calls := b.callsTo(http.MethodPost, "/api/users/addresses")
			require.Len(t, calls, 1)
			body := decodeBody(t, calls[0])
			assert.Equal(t, tt.wantDefault, body["is_default"])
			assert.Equal(t, "411001", body["pincode"])
		})
	}
}

func TestAddAddressValidatesBeforeNetwork(t *testing.T) {
	b := newBackend()
	h := newHarness(t, b)
	svc := NewAddressService(h.client, logging.Discard())

	a := validAddress()
	a.Pincode = "4110"
	err := svc.Add(context.Background(), a)
	assert.Equal(t, "Please enter a valid 6-digit pincode", Message(err))

	a = validAddress()
	a.City = " "
	err = svc.Add(context.Background(), a)
	assert.Equal(t, "Please enter your city", Message(err))

	assert.Empty(t, b.recorded())
}

func TestDeleteAddressRefusals(t *testing.T) {
	tests := []struct {
		name    string
		me      string
		id      string
		wantErr error
		wantMsg string
	}{
		{
			name:    "only address",
			me:      `{"data":{"addresses":[{"_id":"a1","is_default":true}]}}`,
			id:      "a1",
			wantErr: ErrOnlyAddress,
			wantMsg: "Cannot delete the only address. At least one address must be present.",
		},
		{
			name:    "default address",
			me:      twoAddresses,
			id:      "a1",
			wantErr: ErrDefaultAddress,
			wantMsg: "Cannot delete the active address. Please activate another address first.",
		},
		{
			name:    "unknown address",
			me:      twoAddresses,
			id:      "zz",
			wantErr: ErrAddressNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend()
			b.handle("GET /api/users/me", http.StatusOK, tt.me)
			h := newHarness(t, b)
			svc := NewAddressService(h.client, logging.Discard())

			err := svc.Delete(context.Background(), tt.id)
			require.True(t, errors.Is(err, tt.wantErr))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, Message(err))
			}
			assert.Empty(t, b.callsTo(http.MethodDelete, "/api/users/addresses/"+tt.id))
		})
	}
}

func TestDeleteNonDefaultAddress(t *testing.T) {
	b := newBackend()
	b.handle("GET /api/users/me", http.StatusOK, twoAddresses)
	b.handle("DELETE /api/users/addresses/{id}", http.StatusOK, `{"status":"success"}`)
	h := newHarness(t, b)
	svc := NewAddressService(h.client, logging.Discard())

	require.NoError(t, svc.Delete(context.Background(), "a2"))
	assert.Len(t, b.callsTo(http.MethodDelete, "/api/users/addresses/a2"), 1)
}

func TestMakeDefaultUsesPatch(t *testing.T) {
	b := newBackend()
	b.handle("PATCH /api/users/addresses/{id}", http.StatusOK, `{"status":"success"}`)
	h := newHarness(t, b)
	svc := NewAddressService(h.client, logging.Discard())

	require.NoError(t, svc.MakeDefault(context.Background(), "a2"))
	assert.Len(t, b.callsTo(http.MethodPatch, "/api/users/addresses/a2"), 1)
}

func TestPickDefault(t *testing.T) {
	assert.Nil(t, PickDefault(nil))

	first := PickDefault([]models.Address{{ID: "a1"}, {ID: "a2"}})
	require.NotNil(t, first)
	assert.Equal(t, "a1", first.ID)

	marked := PickDefault([]models.Address{{ID: "a1"}, {ID: "a2", IsDefault: true}})
	require.NotNil(t, marked)
	assert.Equal(t, "a2", marked.ID)
}

func TestDefaultAddressFromBackend(t *testing.T) {
	b := newBackend()
	b.handle("GET /api/users/me", http.StatusOK, twoAddresses)
	h := newHarness(t, b)
	svc := NewAddressService(h.client, logging.Discard())

	a, err := svc.DefaultAddress(context.Background())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "a1", a.ID)
}

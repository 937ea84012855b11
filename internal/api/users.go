package api

import (
	"context"
	"net/http"
	"net/url"

	"momskitchen/internal/models"
)

// UsersAPI covers /api/users
type UsersAPI struct {
	c *Client
}

func (c *Client) Users() *UsersAPI { return &UsersAPI{c: c} }

// Me fetches the profile, saved addresses and preferences
func (u *UsersAPI) Me(ctx context.Context) (*models.Profile, error) {
	resp, err := u.c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/users/me"})
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := resp.Decode("data", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ProfileUpdate is the body of PUT /api/users/me
type ProfileUpdate struct {
	Name string `json:"name"`
}

func (u *UsersAPI) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	_, err := u.c.Do(ctx, Request{Method: http.MethodPut, Path: "/api/users/me", Body: update})
	return err
}

// AddAddress saves a new address. IsDefault is sent with the new record.
func (u *UsersAPI) AddAddress(ctx context.Context, a models.Address) error {
	body := addressBody(a)
	body["is_default"] = a.IsDefault
	_, err := u.c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/users/addresses", Body: body})
	return err
}

func (u *UsersAPI) UpdateAddress(ctx context.Context, id string, a models.Address) error {
	_, err := u.c.Do(ctx, Request{Method: http.MethodPut, Path: addressPath(id), Body: addressBody(a)})
	return err
}

// ToggleDefaultAddress makes the address the default one
func (u *UsersAPI) ToggleDefaultAddress(ctx context.Context, id string) error {
	_, err := u.c.Do(ctx, Request{Method: http.MethodPatch, Path: addressPath(id)})
	return err
}

func (u *UsersAPI) DeleteAddress(ctx context.Context, id string) error {
	_, err := u.c.Do(ctx, Request{Method: http.MethodDelete, Path: addressPath(id)})
	return err
}

// AddPreferences saves dietary preferences. fav_dishes is only sent when set.
func (u *UsersAPI) AddPreferences(ctx context.Context, p models.Preferences) error {
	_, err := u.c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/users/preferences", Body: p})
	return err
}

func addressPath(id string) string {
	return "/api/users/addresses/" + url.PathEscape(id)
}

func addressBody(a models.Address) map[string]any {
	return map[string]any{
		"address_line": a.AddressLine,
		"city":         a.City,
		"state":        a.State,
		"pincode":      a.Pincode,
	}
}

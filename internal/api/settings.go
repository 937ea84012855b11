package api

import (
	"context"
	"net/http"

	"momskitchen/internal/models"
)

// SettingsAPI covers /api/settings
type SettingsAPI struct {
	c *Client
}

func (c *Client) Settings() *SettingsAPI { return &SettingsAPI{c: c} }

// Get fetches runtime settings. A response without settings yields nil and no
// error; callers decide what missing windows mean.
func (s *SettingsAPI) Get(ctx context.Context) (*models.Settings, error) {
	resp, err := s.c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/settings"})
	if err != nil {
		return nil, err
	}

	if !resp.Get("data.settings").IsObject() {
		return nil, nil
	}
	var settings models.Settings
	if err := resp.Decode("data.settings", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

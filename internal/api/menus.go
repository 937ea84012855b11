package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"momskitchen/internal/models"
)

// MenusAPI covers /api/menus
type MenusAPI struct {
	c *Client
}

func (c *Client) Menus() *MenusAPI { return &MenusAPI{c: c} }

// List returns up to limit of today's menus
func (m *MenusAPI) List(ctx context.Context, limit int) ([]models.Menu, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	resp, err := m.c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/menus", Query: query})
	if err != nil {
		return nil, err
	}

	// Some deployments omit the data envelope
	path := "data.menus"
	if !resp.Get(path).Exists() {
		path = "menus"
	}
	var menus []models.Menu
	if err := resp.Decode(path, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

func (m *MenusAPI) Get(ctx context.Context, id string) (*models.Menu, error) {
	resp, err := m.c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/menus/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}

	path := "data.menu"
	if !resp.Get(path).Exists() {
		path = "data"
	}
	var menu models.Menu
	if err := resp.Decode(path, &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"momskitchen/internal/models"
)

// CartKey is the storage key of the persisted cart
const CartKey = "@mom_user_app_cart"

// CartRepository persists cart lines as a JSON array
type CartRepository struct {
	storage *StorageRepository
}

func NewCartRepository(storage *StorageRepository) *CartRepository {
	return &CartRepository{storage: storage}
}

// Load returns the persisted cart lines; a missing cart is empty
func (r *CartRepository) Load(ctx context.Context) ([]models.CartLine, error) {
	value, err := r.storage.GetItem(ctx, CartKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(value), &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return lines, nil
}

// Save replaces the persisted cart
func (r *CartRepository) Save(ctx context.Context, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return r.storage.SetItem(ctx, CartKey, string(data))
}

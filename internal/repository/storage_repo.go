package repository

import (
	"context"
	"database/sql"
	"errors"

	"momskitchen/internal/database"
)

// ErrNotFound is returned when a storage key has no value
var ErrNotFound = errors.New("storage key not found")

// StorageRepository is a durable string key/value store backed by the local_storage table
type StorageRepository struct {
	db database.DBTX
}

func NewStorageRepository(db database.DBTX) *StorageRepository {
	return &StorageRepository{db: db}
}

// GetItem retrieves the value stored under key
func (r *StorageRepository) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	query := `SELECT value FROM local_storage WHERE storage_key = ?`
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// SetItem inserts or replaces the value stored under key
func (r *StorageRepository) SetItem(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, r.db.GetDialect().UpsertItemQuery(), key, value)
	return err
}

// RemoveItem deletes key; removing a missing key is not an error
func (r *StorageRepository) RemoveItem(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM local_storage WHERE storage_key = ?`, key)
	return err
}

// Clear deletes every key
func (r *StorageRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM local_storage`)
	return err
}

// All returns every stored key and value
func (r *StorageRepository) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT storage_key, value FROM local_storage ORDER BY storage_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		items[key] = value
	}
	return items, rows.Err()
}

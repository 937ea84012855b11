package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"momskitchen/internal/models"
	"momskitchen/internal/security"
)

// SessionKey is the storage key of the persisted session record
const SessionKey = "auth"

// SessionRepository persists the session record, sealed when a sealer is configured
type SessionRepository struct {
	storage *StorageRepository
	sealer  *security.Sealer
}

// NewSessionRepository creates a session repository. sealer may be nil to store plain JSON.
func NewSessionRepository(storage *StorageRepository, sealer *security.Sealer) *SessionRepository {
	return &SessionRepository{storage: storage, sealer: sealer}
}

// Load returns the persisted session, or the empty session when none is stored
func (r *SessionRepository) Load(ctx context.Context) (models.Session, error) {
	var s models.Session

	value, err := r.storage.GetItem(ctx, SessionKey)
	if errors.Is(err, ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read session: %w", err)
	}

	data := []byte(value)
	if security.IsSealed(value) {
		if r.sealer == nil {
			return s, fmt.Errorf("session is sealed but no encryption key is configured")
		}
		if data, err = r.sealer.Open(value); err != nil {
			return s, fmt.Errorf("failed to open session: %w", err)
		}
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return s, nil
}

// Save replaces the persisted session
func (r *SessionRepository) Save(ctx context.Context, s models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	value := string(data)
	if r.sealer != nil {
		if value, err = r.sealer.Seal(data); err != nil {
			return err
		}
	}
	return r.storage.SetItem(ctx, SessionKey, value)
}

// Delete removes the persisted session
func (r *SessionRepository) Delete(ctx context.Context) error {
	return r.storage.RemoveItem(ctx, SessionKey)
}

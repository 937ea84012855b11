package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momskitchen/internal/database"
	"momskitchen/internal/models"
	"momskitchen/internal/security"
)

func newTestStorage(t *testing.T) *StorageRepository {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStorageRepository(db)
}

func TestStorageRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)

	_, err := repo.GetItem(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.SetItem(ctx, "a", "1"))
	require.NoError(t, repo.SetItem(ctx, "b", "2"))
	require.NoError(t, repo.SetItem(ctx, "a", "3"))

	v, err := repo.GetItem(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "3", "b": "2"}, all)

	require.NoError(t, repo.RemoveItem(ctx, "a"))
	require.NoError(t, repo.RemoveItem(ctx, "a"), "removing twice is fine")
	_, err = repo.GetItem(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Clear(ctx))
	all, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	session := models.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &models.UserProfile{ID: "u1", Name: "Asha", PhoneNumber: "9876543210", IsActive: true},
	}

	tests := []struct {
		name   string
		sealer *security.Sealer
	}{
		{name: "plain", sealer: nil},
		{name: "sealed", sealer: security.NewSealer("passphrase")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage := newTestStorage(t)
			repo := NewSessionRepository(storage, tt.sealer)

			empty, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.Session{}, empty)

			require.NoError(t, repo.Save(ctx, session))

			raw, err := storage.GetItem(ctx, SessionKey)
			require.NoError(t, err)
			assert.Equal(t, tt.sealer != nil, security.IsSealed(raw))

			loaded, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, session, loaded)

			require.NoError(t, repo.Delete(ctx))
			loaded, err = repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.Session{}, loaded)
		})
	}
}

func TestSessionRepositoryReadsPlainRecordWithSealer(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	require.NoError(t, NewSessionRepository(storage, nil).Save(ctx, models.Session{AccessToken: "a"}))

	loaded, err := NewSessionRepository(storage, security.NewSealer("k")).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.AccessToken)
}

func TestSessionRepositorySealedWithoutKey(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	require.NoError(t, NewSessionRepository(storage, security.NewSealer("k")).Save(ctx, models.Session{AccessToken: "a"}))

	_, err := NewSessionRepository(storage, nil).Load(ctx)
	assert.Error(t, err)
}

func TestCartRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository(newTestStorage(t))

	lines, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	want := []models.CartLine{
		{ID: "m1", Name: "Thali", Price: "₹100", RemainingOrders: 5, Quantity: 2},
		{ID: "m2", Name: "Biryani", Price: "₹180", RemainingOrders: 3, Quantity: 1},
	}
	require.NoError(t, repo.Save(ctx, want))

	lines, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, lines)

	require.NoError(t, repo.Save(ctx, nil))
	lines, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartRepositoryCorruptValue(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	require.NoError(t, storage.SetItem(ctx, CartKey, "{not json"))

	_, err := NewCartRepository(storage).Load(ctx)
	assert.Error(t, err)
}

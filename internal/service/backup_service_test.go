package service

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momskitchen/internal/database"
	"momskitchen/internal/logging"
	"momskitchen/internal/repository"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping sqlite test in short mode")
	}
	db, err := database.Initialize(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestDB(t)
	storage := repository.NewStorageRepository(src)
	require.NoError(t, storage.SetItem(ctx, repository.SessionKey, `{"accessToken":"a"}`))
	require.NoError(t, storage.SetItem(ctx, repository.CartKey, `[{"id":"m1","quantity":2}]`))

	var buf bytes.Buffer
	require.NoError(t, NewBackupService(src, logging.Discard()).ExportToWriter(ctx, &buf))

	var exported BackupData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	assert.Equal(t, "1.0", exported.Version)
	assert.Equal(t, "sqlite3", exported.DatabaseType)
	require.Len(t, exported.Items, 2)
	assert.Equal(t, repository.CartKey, exported.Items[0].Key, "items are sorted by key")

	dst := newTestDB(t)
	dstStorage := repository.NewStorageRepository(dst)
	require.NoError(t, dstStorage.SetItem(ctx, "stale", "x"))

	require.NoError(t, NewBackupService(dst, logging.Discard()).ImportFromReader(ctx, &buf, true))

	all, err := dstStorage.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		repository.SessionKey: `{"accessToken":"a"}`,
		repository.CartKey:    `[{"id":"m1","quantity":2}]`,
	}, all)
}

func TestImportMergesWithoutReplace(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	storage := repository.NewStorageRepository(db)
	require.NoError(t, storage.SetItem(ctx, "keep", "1"))

	in := `{"version":"1.0","items":[{"key":"auth","value":"{}"}]}`
	require.NoError(t, NewBackupService(db, logging.Discard()).ImportFromReader(ctx, strings.NewReader(in), false))

	all, err := storage.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	db := newTestDB(t)
	err := NewBackupService(db, logging.Discard()).ImportFromReader(context.Background(), strings.NewReader(`{"version":"9"}`), true)
	assert.Error(t, err)
}

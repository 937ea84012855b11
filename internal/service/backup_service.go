package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"momskitchen/internal/database"
	"momskitchen/internal/repository"
)

const backupVersion = "1.0"

// BackupData is the exported local state
type BackupData struct {
	Version      string       `json:"version"`
	ExportedAt   time.Time    `json:"exported_at"`
	DatabaseType string       `json:"database_type"`
	Items        []ItemBackup `json:"items"`
}

// ItemBackup is one local_storage entry. Sealed session records stay sealed.
type ItemBackup struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// BackupService exports and restores the local key/value store
type BackupService struct {
	db  *database.DB
	log logrus.FieldLogger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log logrus.FieldLogger) *BackupService {
	return &BackupService{db: db, log: log.WithField("component", "backup")}
}

// Export writes a backup of the local store to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	s.log.WithField("path", outputPath).Info("Local store exported")
	return nil
}

// ExportToWriter writes a backup of the local store to w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	items, err := repository.NewStorageRepository(s.db).All(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local store: %w", err)
	}

	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
		Items:        make([]ItemBackup, 0, len(items)),
	}
	for key, value := range items {
		backup.Items = append(backup.Items, ItemBackup{Key: key, Value: value})
	}
	sort.Slice(backup.Items, func(i, j int) bool { return backup.Items[i].Key < backup.Items[j].Key })

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a backup file. See ImportFromReader.
func (s *BackupService) Import(ctx context.Context, inputPath string, replace bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file, replace)
}

// ImportFromReader restores a backup in one transaction. With replace set the
// store is emptied first; otherwise imported keys overwrite existing ones.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader, replace bool) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.log.WithFields(logrus.Fields{
		"version":     backup.Version,
		"exported_at": backup.ExportedAt,
		"items":       len(backup.Items),
	}).Info("Importing local store")

	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		storage := repository.NewStorageRepository(tx)
		if replace {
			if err := storage.Clear(ctx); err != nil {
				return fmt.Errorf("failed to clear local store: %w", err)
			}
		}
		for _, item := range backup.Items {
			if item.Key == "" {
				continue
			}
			if err := storage.SetItem(ctx, item.Key, item.Value); err != nil {
				return fmt.Errorf("failed to import %s: %w", item.Key, err)
			}
		}
		return nil
	})
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"momskitchen/internal/config"
	"momskitchen/internal/database"
	"momskitchen/internal/logging"
	"momskitchen/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and import the momskitchen local store",
	Long: `backup copies the client's local key/value store (session and cart) to a JSON
file and back. Sealed session records stay sealed, so an import only works with
the same SESSION_ENCRYPTION_KEY.

Environment variables:
  DB_TYPE        sqlite, postgres or mysql (default: sqlite)
  DB_PATH        SQLite database path (default: ./momskitchen.db)
  DATABASE_URL   PostgreSQL or MySQL connection URL`,
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the local store to a JSON file",
	Example: `  backup export
  backup export --output mybackup.json`,
	RunE: withBackupService(runExport),
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON backup into the local store",
	Example: `  # Merge with existing data
  backup import --input backup.json

  # Replace all data
  backup import --input backup.json --clear`,
	RunE: withBackupService(runImport),
}

func init() {
	exportCmd.Flags().String("output", "", "output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	importCmd.Flags().String("input", "", "input file path")
	importCmd.Flags().Bool("clear", false, "clear existing data before import (WARNING: destructive)")
	_ = importCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(exportCmd, importCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func withBackupService(fn func(cmd *cobra.Command, svc *service.BackupService, log logrus.FieldLogger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		// Run migrations to ensure schema is up to date
		if err := db.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		return fn(cmd, service.NewBackupService(db, log), log)
	}
}

func runExport(cmd *cobra.Command, svc *service.BackupService, log logrus.FieldLogger) error {
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	// Ensure directory exists
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := svc.Export(cmd.Context(), outputPath); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		log.WithField("bytes", info.Size()).Info("Export complete")
	}
	return nil
}

func runImport(cmd *cobra.Command, svc *service.BackupService, log logrus.FieldLogger) error {
	inputPath, _ := cmd.Flags().GetString("input")
	clearData, _ := cmd.Flags().GetBool("clear")

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputPath)
	}

	if clearData {
		fmt.Fprint(cmd.OutOrStdout(), "WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Fscanln(cmd.InOrStdin(), &confirmation)
		if strings.TrimSpace(confirmation) != "yes" {
			log.Info("Import cancelled")
			return nil
		}
	}

	if err := svc.Import(cmd.Context(), inputPath, clearData); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	log.Info("Import complete")
	return nil
}

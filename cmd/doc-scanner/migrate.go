package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docuflow/doc-scanner/internal/config"
	"github.com/docuflow/doc-scanner/internal/store"
	"github.com/docuflow/doc-scanner/pkg/log"
	"github.com/docuflow/doc-scanner/pkg/migrations"
)

var migrationsFolder string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.Level(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		if migrationsFolder == "" {
			migrationsFolder = cfg.Service.MigrationsFolder
		}

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalf("initializing data store: %v", err)
		}

		s := store.NewStore(db)
		defer func() { _ = s.Close() }()

		if err := migrations.MigrateStore(db, migrationsFolder); err != nil {
			zap.S().Fatalf("running migrations: %v", err)
		}

		zap.S().Info("migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVarP(&migrationsFolder, "migrations-folder", "m", "", "Path to the migrations folder")
}

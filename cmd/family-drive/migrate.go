package main

import (
	"family-drive-go/internal/db"
	"family-drive-go/pkg/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd(base logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(base)
			if err != nil {
				return err
			}

			conn, err := db.NewPostgres(cfg.DB, log)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := conn.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()

			applied, err := db.Migrate(conn, log)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				log.Info("db: nothing to migrate")
				return nil
			}
			for _, name := range applied {
				log.Info("db: migration applied", "name", name)
			}
			return nil
		},
	}
}

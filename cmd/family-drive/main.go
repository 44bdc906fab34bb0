package main

import (
	"os"

	"family-drive-go/internal/config"
	"family-drive-go/pkg/logger"

	"github.com/spf13/cobra"
)

func main() {
	log := logger.NewFromEnv()

	root := &cobra.Command{
		Use:           "family-drive",
		Short:         "Family drive API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(log), newMigrateCmd(log))

	if err := root.Execute(); err != nil {
		log.Critical("app: command failed", "err", err)
		os.Exit(1)
	}
}

func loadConfig(log logger.Logger) (config.Config, logger.Logger, error) {
	cfg, err := config.Load(log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.NewFromConfig(cfg.Log.Level, cfg.Log.Format, cfg.Env), nil
}

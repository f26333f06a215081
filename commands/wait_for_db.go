package commands

import (
	"context"
	"time"

	"recipe-api/config"
	"recipe-api/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// wait-for-db flags
	waitTimeout  time.Duration
	waitInterval time.Duration
)

// waitForDBCmd blocks until the configured database accepts connections
var waitForDBCmd = &cobra.Command{
	Use:   "wait-for-db",
	Short: "Wait until the database is available",
	Long: `Poll the configured database until it answers a ping.

Examples:
  receita wait-for-db                  # Wait up to database.wait_timeout
  receita wait-for-db --timeout 2m     # Wait up to two minutes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout := waitTimeout
		if timeout == 0 {
			timeout = config.AppConfig.Database.WaitTimeout
		}
		return runWaitForDB(cmd.Context(), config.AppConfig.Database, timeout, waitInterval, logger)
	},
}

func runWaitForDB(ctx context.Context, cfg config.DatabaseConfig, timeout, interval time.Duration, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := database.WaitForDB(ctx, cfg, interval, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}

func init() {
	waitForDBCmd.Flags().DurationVar(&waitTimeout, "timeout", 0, "How long to wait (default database.wait_timeout)")
	waitForDBCmd.Flags().DurationVar(&waitInterval, "interval", time.Second, "Delay between attempts")
	rootCmd.AddCommand(waitForDBCmd)
}

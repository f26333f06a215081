package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"recipe-api/config"
	"recipe-api/database"
	"recipe-api/repositories"
	"recipe-api/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// createsuperuser flags
	superuserEmail    string
	superuserPassword string
)

// createSuperuserCmd creates an administrative account
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a superuser account",
	Long: `Create an active staff account with superuser rights.

The password may also be passed in RECEITA_SUPERUSER_PASSWORD so it does not
end up in the shell history.

Examples:
  receita createsuperuser --email admin@example.com --password s3cret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := superuserPassword
		if password == "" {
			password = os.Getenv("RECEITA_SUPERUSER_PASSWORD")
		}
		return runCreateSuperuser(cmd.Context(), config.AppConfig.Database, logger, superuserEmail, password)
	},
}

func runCreateSuperuser(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger, email, password string) error {
	if email == "" || password == "" {
		return errors.New("both --email and a password are required")
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	users := services.NewUserService(repositories.NewManager().Users(db))
	user, err := users.CreateSuperuser(ctx, email, password)
	if err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}
	log.Info("Superuser created", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return nil
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superuserEmail, "email", "", "Email address of the superuser")
	createSuperuserCmd.Flags().StringVar(&superuserPassword, "password", "", "Password of the superuser")
	rootCmd.AddCommand(createSuperuserCmd)
}

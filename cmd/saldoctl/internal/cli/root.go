// Package cli implements saldoctl, the admin tool for a saldo database.
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/saldo/internal/config"
	"github.com/MrJamesThe3rd/saldo/internal/database"
	"github.com/MrJamesThe3rd/saldo/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "saldoctl",
		Short:         "Administer a saldo database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}

			logger, err := logging.New(cmd.ErrOrStderr(), level, "text")
			if err != nil {
				return err
			}

			slog.SetDefault(logger)

			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewCategoryCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))

	return cmd
}

// env is what a command needs to reach the configured database.
type env struct {
	cfg     *config.Config
	db      *sql.DB
	dialect database.Dialect
}

func connect() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	driver, dsn, err := cfg.DataSource()
	if err != nil {
		return nil, err
	}

	db, err := database.New(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	slog.Debug("connected", "driver", driver)

	return &env{cfg: cfg, db: db, dialect: database.Dialect(driver)}, nil
}

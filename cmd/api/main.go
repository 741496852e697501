package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/saldo/internal/category"
	categoryStore "github.com/MrJamesThe3rd/saldo/internal/category/store"
	"github.com/MrJamesThe3rd/saldo/internal/config"
	"github.com/MrJamesThe3rd/saldo/internal/database"
	"github.com/MrJamesThe3rd/saldo/internal/export"
	saldoHttp "github.com/MrJamesThe3rd/saldo/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/saldo/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/saldo/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/saldo/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/saldo/internal/http/matching"
	reportHandler "github.com/MrJamesThe3rd/saldo/internal/http/report"
	txHandler "github.com/MrJamesThe3rd/saldo/internal/http/transaction"
	userHandler "github.com/MrJamesThe3rd/saldo/internal/http/user"
	"github.com/MrJamesThe3rd/saldo/internal/identity"
	identityStore "github.com/MrJamesThe3rd/saldo/internal/identity/store"
	"github.com/MrJamesThe3rd/saldo/internal/importer"
	"github.com/MrJamesThe3rd/saldo/internal/logging"
	"github.com/MrJamesThe3rd/saldo/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/saldo/internal/matching/store"
	"github.com/MrJamesThe3rd/saldo/internal/report"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
	txStore "github.com/MrJamesThe3rd/saldo/internal/transaction/store"
	"github.com/MrJamesThe3rd/saldo/internal/user"
	userStore "github.com/MrJamesThe3rd/saldo/internal/user/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.LoadServer()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, dsn, err := cfg.DataSource()
	if err != nil {
		return err
	}

	db, err := database.New(driver, dsn)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	dialect := database.Dialect(driver)

	applied, err := database.Migrate(ctx, db, dialect)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if len(applied) > 0 {
		slog.Info("applied migrations", "files", applied)
	}

	accounts := identity.NewLocal(identityStore.New(db, dialect), cfg.Auth.Secret, cfg.Auth.TokenTTL)

	var (
		userService        = user.NewService(userStore.New(db, dialect), accounts)
		categoryService    = category.NewService(categoryStore.New(db, dialect))
		transactionService = transaction.NewService(txStore.New(db, dialect))
		reportService      = report.NewService(transactionService, userService)
		importService      = importer.NewService(cfg.Import.DefaultCategory)
		exportService      = export.NewService(transactionService)
		matchingService    = matching.NewService(matchingStore.New(db, dialect), categoryService)
	)

	router := saldoHttp.New(accounts, cfg.CORS.Origins, saldoHttp.Handlers{
		Users:        userHandler.NewHandler(userService, accounts),
		Categories:   categoryHandler.NewHandler(categoryService),
		Transactions: txHandler.NewHandler(transactionService),
		Reports:      reportHandler.NewHandler(reportService),
		Rules:        matchingHandler.NewHandler(matchingService),
		Import:       importHandler.NewHandler(importService, matchingService, transactionService, cfg.Import.MaxBytes),
		Export:       exportHandler.NewHandler(exportService),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "driver", driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

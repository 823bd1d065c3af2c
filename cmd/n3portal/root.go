package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"n3portal/internal/config"
	"n3portal/internal/database"
	"n3portal/internal/lock"
	"n3portal/internal/logger"
	"n3portal/internal/portal"
	"n3portal/internal/service"
	"n3portal/internal/sheet"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "n3portal",
		Short:        "Order portal for made-to-order insoles",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPortal(cmd.Context(), cfg)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&cfg.SpreadsheetID, "spreadsheet", cfg.SpreadsheetID, "Google spreadsheet id")
	f.StringVar(&cfg.Worksheet, "worksheet", cfg.Worksheet, "worksheet holding the orders")
	f.StringVar(&cfg.CredentialsFile, "creds", cfg.CredentialsFile, "service account key file")
	f.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "store backend: sheets, postgres or memory")
	f.StringVarP(&cfg.DatabaseURI, "database", "d", cfg.DatabaseURI, "database URI")
	f.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address for the order number lock")
	f.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "invalid entries allowed per prompt")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	f.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also write JSON logs to this file")

	cmd.AddCommand(newServeCmd(cfg), newHashPasswordCmd())
	return cmd
}

func runPortal(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Quiet: true})
	if err != nil {
		return err
	}
	defer closer.Close()
	log = log.With("session", uuid.NewString())
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open order store", "backend", cfg.StoreBackend, "error", err)
		return err
	}
	defer closeStore()

	locker, closeLocker, err := openLocker(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up order lock", "error", err)
		return err
	}
	defer closeLocker()

	orders := service.NewOrderService(store, locker)
	err = portal.New(os.Stdin, os.Stdout, orders, log, cfg.MaxAttempts).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openStore(ctx context.Context, cfg *config.Config) (sheet.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendSheets:
		s, err := sheet.NewSheets(ctx, cfg.SpreadsheetID, cfg.Worksheet, cfg.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case config.BackendPostgres:
		return openPostgres(ctx, cfg.DatabaseURI)
	case config.BackendMemory:
		return sheet.NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func openPostgres(ctx context.Context, uri string) (*database.Store, func(), error) {
	db, err := database.NewDB(ctx, uri)
	if err != nil {
		return nil, nil, err
	}
	if err := database.InitSchema(ctx, db); err != nil {
		database.CloseDB(db)
		return nil, nil, fmt.Errorf("failed to init DB schema: %w", err)
	}
	return database.NewStore(db), func() { database.CloseDB(db) }, nil
}

func openLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		return lock.NewLocal(), func() {}, nil
	}
	r, err := lock.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		return nil, nil, err
	}
	return r, func() {
		if err := r.Close(); err != nil {
			slog.Error("failed to close redis", "error", err)
		}
	}, nil
}

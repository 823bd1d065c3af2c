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

	"github.com/spf13/cobra"

	"n3portal/internal/config"
	"n3portal/internal/handler"
	"n3portal/internal/logger"
	"n3portal/internal/service"
	"n3portal/internal/worker"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the staff order API and the database replica",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.RunAddress, "address", "a", cfg.RunAddress, "server address and port")
	f.StringVarP(&cfg.JWTSecret, "secret", "s", cfg.JWTSecret, "jwt signing key")
	f.DurationVar(&cfg.ReplicaInterval, "replica-interval", cfg.ReplicaInterval, "how often the database replica is refreshed")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for STAFF_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(log)

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

	// Services
	authSvc := service.NewAuthService(cfg.StaffLogin, cfg.StaffPasswordHash)
	orderSvc := service.NewOrderService(store, locker)
	if cfg.StaffPasswordHash == "" {
		slog.Warn("STAFF_PASSWORD_HASH is empty, staff login is disabled")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Worker
	if cfg.DatabaseURI != "" && cfg.StoreBackend != config.BackendPostgres {
		replica, closeReplica, err := openPostgres(ctx, cfg.DatabaseURI)
		if err != nil {
			slog.Error("failed to open replica database", "error", err)
			return err
		}
		defer closeReplica()
		go worker.NewReplicaWorker(store, replica, cfg.ReplicaInterval).Start(workerCtx)
	}

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      handler.NewRouter(authSvc, orderSvc, cfg.JWTSecret),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		slog.Info("shutting down...")
	case err := <-serveErr:
		slog.Error("server failed", "error", err)
		return err
	}

	cancel() // stop worker
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

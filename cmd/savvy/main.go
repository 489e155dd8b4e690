package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"savvy/internal/auth"
	"savvy/internal/cli"
	apphttp "savvy/internal/http"
	"savvy/internal/log"
	"savvy/internal/realtime"
	"savvy/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	amqpClient := cli.InitAMQP(logger, cfg)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	hub := realtime.NewHub(logger)
	go hub.Run()

	users := services.NewUserService(repo, tokens, cfg.DefaultCurrency)
	transactions := services.NewTransactionService(repo, amqpClient, hub, logger)
	planning := services.NewPlanningService(repo, hub)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:              ":" + cfg.Port,
		RequestsPerMinute: cfg.RequestsPerMinute,
		DefaultCurrency:   cfg.DefaultCurrency,
	}, users, transactions, planning, tokens, hub, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := cli.SignalContext()
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting savvy server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		hub.Stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		return transactions.Close()
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

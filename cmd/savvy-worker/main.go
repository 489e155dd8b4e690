package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"savvy/internal/cli"
	"savvy/internal/log"
	gsheet "savvy/internal/sheets/google"
	"savvy/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting savvy-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	if cfg.MirrorSpreadsheetID == "" {
		logger.Info("Mirroring disabled, no MIRROR_SPREADSHEET_ID provided")
		return
	}

	sheetsClient, err := gsheet.New(context.Background(), cfg.MirrorSpreadsheetID, cfg.MirrorSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.MirrorSpreadsheetID,
		"sheet", cfg.MirrorSheetName)

	amqpClient := cli.InitAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	mirrorWorker := worker.NewMirrorWorker(repo, sheetsClient, sheetsClient, cfg.MirrorBatchSize, logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	// Catch up on anything missed while the worker was down.
	if err := mirrorWorker.ProcessPending(ctx); err != nil {
		logger.Error("Startup sweep failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeMirror(ctx, mirrorWorker.HandleMirrorMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.MirrorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := mirrorWorker.ProcessPending(ctx); err != nil {
					logger.Error("Periodic sweep failed", log.FieldError, err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// Package worker mirrors transaction changes from SQLite into the
// spreadsheet backend.
package worker

import (
	"context"
	"errors"
	"fmt"

	"savvy/internal/amqp"
	"savvy/internal/log"
	"savvy/internal/sheets"
	"savvy/internal/storage"
)

// MirrorWorker applies mirror messages and sweeps unmirrored rows.
// SQLite stays the source of truth, the mirror only ever lags behind.
type MirrorWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.TransactionWriter
	remover   sheets.TransactionRemover
	batchSize int
	logger    *log.Logger
}

func NewMirrorWorker(storage *storage.SQLiteRepository, writer sheets.TransactionWriter, remover sheets.TransactionRemover, batchSize int, logger *log.Logger) *MirrorWorker {
	return &MirrorWorker{
		storage:   storage,
		writer:    writer,
		remover:   remover,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMirrorMessage processes a single mirror message from the queue.
func (w *MirrorWorker) HandleMirrorMessage(ctx context.Context, msg *amqp.MirrorMessage) error {
	w.logger.InfoContext(ctx, "Processing mirror message",
		log.FieldTransactionID, msg.ID,
		log.FieldOperation, msg.Op)

	switch msg.Op {
	case amqp.OpDelete:
		return w.removeFromMirror(ctx, msg.ID)
	case amqp.OpUpsert:
		return w.mirrorByID(ctx, msg.ID)
	default:
		// unknown ops are dropped, requeueing them cannot help
		w.logger.WarnContext(ctx, "Unknown mirror operation",
			log.FieldTransactionID, msg.ID,
			log.FieldOperation, msg.Op)
		return nil
	}
}

// ProcessPending mirrors transactions whose queue message was lost. This
// is the backup path, it runs on an interval and at startup.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListUnmirrored(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unmirrored: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "Processing pending mirror rows", log.FieldPending, len(pending))

	for _, tx := range pending {
		ref, err := w.writer.Upsert(ctx, tx)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror transaction",
				log.FieldTransactionID, tx.ID,
				log.FieldError, err.Error())
			continue
		}
		if err := w.storage.MarkMirrored(ctx, tx.ID); err != nil {
			// the mirror write itself succeeded
			w.logger.ErrorContext(ctx, "Failed to mark transaction mirrored",
				log.FieldTransactionID, tx.ID,
				log.FieldError, err.Error())
			continue
		}
		w.logger.InfoContext(ctx, "Mirrored transaction",
			log.FieldTransactionID, tx.ID,
			log.FieldSheetsRef, ref)
	}

	return nil
}

func (w *MirrorWorker) mirrorByID(ctx context.Context, id string) error {
	tx, err := w.storage.GetTransactionAnyUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// deleted between publish and consume, the delete message follows
			w.logger.WarnContext(ctx, "Transaction vanished before mirroring",
				log.FieldTransactionID, id)
			return nil
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.writer.Upsert(ctx, tx)
	if err != nil {
		return fmt.Errorf("upsert mirror row: %w", err)
	}

	if err := w.storage.MarkMirrored(ctx, id); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark transaction mirrored",
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
	}

	w.logger.InfoContext(ctx, "Mirrored transaction",
		log.FieldTransactionID, id,
		log.FieldSheetsRef, ref)
	return nil
}

func (w *MirrorWorker) removeFromMirror(ctx context.Context, id string) error {
	if w.remover == nil {
		w.logger.WarnContext(ctx, "No mirror remover configured, skipping delete",
			log.FieldTransactionID, id)
		return nil
	}
	if err := w.remover.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove mirror row: %w", err)
	}
	w.logger.InfoContext(ctx, "Removed mirrored transaction", log.FieldTransactionID, id)
	return nil
}

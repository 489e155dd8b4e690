// Package services orchestrates writes across SQLite, the mirror queue
// and the realtime hub.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"savvy/internal/amqp"
	"savvy/internal/core"
	"savvy/internal/log"
	"savvy/internal/realtime"
	"savvy/internal/storage"
)

// TransactionService owns the write path for transactions. SQLite is the
// source of truth, the mirror queue and hub notifications are best effort.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	hub        *realtime.Hub
	logger     *log.Logger
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, hub *realtime.Hub, logger *log.Logger) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
		hub:        hub,
		logger:     logger.WithComponent(log.ComponentApp),
	}
}

// Create validates and saves a new transaction, then fans out change
// notifications. The transaction ID is generated here.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now()

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.storage.CreateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishMirror(ctx, tx.ID, amqp.OpUpsert)
	s.notify(tx.UserID)
	return tx, nil
}

// Update replaces an existing transaction's fields.
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	if err := s.storage.UpdateTransaction(ctx, tx); err != nil {
		return err
	}

	s.publishMirror(ctx, tx.ID, amqp.OpUpsert)
	s.notify(tx.UserID)
	return nil
}

// Delete removes a transaction belonging to the user.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	s.publishMirror(ctx, id, amqp.OpDelete)
	s.notify(userID)
	return nil
}

// Get returns a single transaction owned by the user.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, userID, id)
}

// List returns all of the user's transactions ordered by date.
func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID)
}

func (s *TransactionService) publishMirror(ctx context.Context, id, op string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishMirror(ctx, id, op); err != nil {
		// transaction is saved locally, the pending sweep catches up later
		s.logger.ErrorContext(ctx, "Failed to publish mirror message",
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
	}
}

func (s *TransactionService) notify(userID string) {
	if s.hub != nil {
		s.hub.Notify(userID, realtime.TableTransactions)
	}
}

// Close closes the storage and AMQP connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}

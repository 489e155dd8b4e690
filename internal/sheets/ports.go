// Package sheets defines the outbound ports for the spreadsheet mirror.
package sheets

import (
	"context"

	"savvy/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionWriter appends or replaces a transaction row in the
	// mirror. Upserts are keyed by transaction ID.
	TransactionWriter interface {
		Upsert(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionRemover removes a mirrored transaction row by ID.
	TransactionRemover interface {
		Remove(ctx context.Context, id string) error
	}
)

// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/kakeibo/backend/internal/domain/entity"
)

// TransactionStore defines typed access to the persisted transaction list.
// Implementations exist for the database and for the HTTP API, so the
// dashboard can run against either.
type TransactionStore interface {
	// ListByOwnerAndRange returns the owner's transactions with
	// firstDay <= date <= lastDay, ordered by date descending.
	// An empty range yields an empty slice, not an error.
	ListByOwnerAndRange(ctx context.Context, ownerID uuid.UUID, firstDay, lastDay string) ([]*entity.Transaction, error)

	// Append persists a new transaction. The write is all-or-nothing; on
	// success the store has assigned the ID and the record is visible to
	// subsequent range queries.
	Append(ctx context.Context, transaction *entity.Transaction) error
}

// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
	"github.com/kakeibo/backend/internal/integration/persistence/model"
)

// transactionRepository implements the adapter.TransactionStore interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionStore {
	return &transactionRepository{
		db: db,
	}
}

// ListByOwnerAndRange retrieves the owner's transactions with firstDay <= date <= lastDay,
// newest date first and newest insert first within a day. The id breaks exact
// ties so repeated reads return the same order.
func (r *transactionRepository) ListByOwnerAndRange(ctx context.Context, ownerID uuid.UUID, firstDay, lastDay string) ([]*entity.Transaction, error) {
	if ownerID == uuid.Nil {
		return nil, domainerror.ErrMissingOwner
	}

	var transactionModels []model.TransactionModel
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", ownerID, firstDay, lastDay).
		Order("date DESC, created_at DESC, id DESC").
		Find(&transactionModels)
	if result.Error != nil {
		return nil, result.Error
	}

	transactions := make([]*entity.Transaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = transactionModels[i].ToEntity()
	}
	return transactions, nil
}

// Append creates a new transaction in the database.
func (r *transactionRepository) Append(ctx context.Context, transaction *entity.Transaction) error {
	if transaction.UserID == uuid.Nil {
		return domainerror.ErrMissingOwner
	}

	transactionModel := model.TransactionFromEntity(transaction)
	result := r.db.WithContext(ctx).Create(transactionModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

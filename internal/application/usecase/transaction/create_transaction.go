// Package transaction contains transaction-related use cases.
package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
	"github.com/kakeibo/backend/internal/domain/valueobject"
)

// MaxDescriptionLength is the maximum allowed length for transaction descriptions, in characters.
const MaxDescriptionLength = 255

// CreateTransactionInput represents the input for transaction creation.
type CreateTransactionInput struct {
	UserID      uuid.UUID
	Date        string // YYYY-MM-DD
	Description string
	Amount      int64
	Category    string // Empty means classify from the description
}

// CreateTransactionOutput represents the output of transaction creation.
type CreateTransactionOutput struct {
	Transaction *entity.Transaction
}

// CreateTransactionUseCase handles transaction creation logic.
type CreateTransactionUseCase struct {
	store      adapter.TransactionStore
	classifier adapter.CategoryClassifier
}

// NewCreateTransactionUseCase creates a new CreateTransactionUseCase instance.
func NewCreateTransactionUseCase(
	store adapter.TransactionStore,
	classifier adapter.CategoryClassifier,
) *CreateTransactionUseCase {
	return &CreateTransactionUseCase{
		store:      store,
		classifier: classifier,
	}
}

// Execute performs the transaction creation.
func (uc *CreateTransactionUseCase) Execute(ctx context.Context, input CreateTransactionInput) (*CreateTransactionOutput, error) {
	if input.UserID == uuid.Nil {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeMissingTransactionFields,
			"owner is required",
			domainerror.ErrMissingOwner,
		)
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeEmptyDescription,
			"description is required",
			domainerror.ErrEmptyDescription,
		)
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeDescriptionTooLong,
			fmt.Sprintf("description must not exceed %d characters", MaxDescriptionLength),
			domainerror.ErrDescriptionTooLong,
		)
	}

	if _, err := valueobject.ParseDate(input.Date); err != nil {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionDate,
			"date must be a YYYY-MM-DD calendar date",
			domainerror.ErrInvalidTransactionDate,
		)
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = uc.classifier.Classify(ctx, description)
	} else if !entity.IsStorableCategory(category) {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionCategory,
			fmt.Sprintf("category %q is not in the vocabulary", category),
			domainerror.ErrInvalidTransactionCategory,
		)
	}

	transaction := entity.NewTransaction(input.UserID, input.Date, description, input.Amount, category)

	if err := uc.store.Append(ctx, transaction); err != nil {
		slog.Error("Failed to append transaction",
			"user_id", input.UserID,
			"date", input.Date,
			"error", err,
		)
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeTransactionWriteFailed,
			"failed to save transaction",
			err,
		)
	}

	slog.Info("Transaction created",
		"user_id", input.UserID,
		"transaction_id", transaction.ID,
		"category", category,
	)

	return &CreateTransactionOutput{Transaction: transaction}, nil
}

// Package transaction contains transaction-related use cases.
package transaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
	"github.com/kakeibo/backend/internal/domain/valueobject"
)

// ListTransactionsInput represents the input for listing transactions.
// FirstDay and LastDay are inclusive YYYY-MM-DD bounds.
type ListTransactionsInput struct {
	UserID   uuid.UUID
	FirstDay string
	LastDay  string
}

// ListTransactionsOutput represents the output of listing transactions.
type ListTransactionsOutput struct {
	Transactions []*entity.Transaction
	TotalAmount  int64
	Window       valueobject.MonthWindow
}

// ListTransactionsUseCase handles range reads for a single owner.
type ListTransactionsUseCase struct {
	store adapter.TransactionStore
}

// NewListTransactionsUseCase creates a new ListTransactionsUseCase instance.
func NewListTransactionsUseCase(store adapter.TransactionStore) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{
		store: store,
	}
}

// Execute lists the owner's transactions in the range, newest first, with their total.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, input ListTransactionsInput) (*ListTransactionsOutput, error) {
	if input.UserID == uuid.Nil {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeMissingTransactionFields,
			"owner is required",
			domainerror.ErrMissingOwner,
		)
	}

	first, err := valueobject.ParseDate(input.FirstDay)
	if err != nil {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionDate,
			fmt.Sprintf("invalid first day %q", input.FirstDay),
			domainerror.ErrInvalidTransactionDate,
		)
	}
	last, err := valueobject.ParseDate(input.LastDay)
	if err != nil {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionDate,
			fmt.Sprintf("invalid last day %q", input.LastDay),
			domainerror.ErrInvalidTransactionDate,
		)
	}
	if first.After(last) {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidDateRange,
			"first day must not be after last day",
			domainerror.ErrInvalidDateRange,
		)
	}

	transactions, err := uc.store.ListByOwnerAndRange(ctx, input.UserID, input.FirstDay, input.LastDay)
	if err != nil {
		slog.Error("Failed to list transactions",
			"user_id", input.UserID,
			"first_day", input.FirstDay,
			"last_day", input.LastDay,
			"error", err,
		)
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeTransactionReadFailed,
			"failed to read transactions",
			err,
		)
	}

	return &ListTransactionsOutput{
		Transactions: transactions,
		TotalAmount:  entity.SumAmounts(transactions),
		Window:       valueobject.MonthWindow{FirstDay: input.FirstDay, LastDay: input.LastDay},
	}, nil
}

// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/kakeibo/backend/internal/domain/entity"
	"github.com/kakeibo/backend/internal/domain/valueobject"
)

// CreateTransactionRequest represents the request body for transaction creation.
// An empty category asks the server to classify the description.
type CreateTransactionRequest struct {
	Date        string `json:"date" binding:"required"`
	Description string `json:"description" binding:"required"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category,omitempty"`
}

// TransactionResponse represents a single transaction in API responses.
type TransactionResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// WindowResponse represents an inclusive date range.
type WindowResponse struct {
	FirstDay string `json:"first_day"`
	LastDay  string `json:"last_day"`
}

// TransactionListResponse represents the response for listing transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	TotalAmount  int64                 `json:"total_amount"`
	Window       WindowResponse        `json:"window"`
}

// ToTransactionResponse converts a Transaction entity to its DTO.
func ToTransactionResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID.String(),
		UserID:      t.UserID.String(),
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
		CreatedAt:   t.CreatedAt,
	}
}

// ToTransactionListResponse converts a list result to its DTO.
func ToTransactionListResponse(transactions []*entity.Transaction, total int64, window valueobject.MonthWindow) TransactionListResponse {
	items := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		items[i] = ToTransactionResponse(t)
	}
	return TransactionListResponse{
		Transactions: items,
		TotalAmount:  total,
		Window:       WindowResponse{FirstDay: window.FirstDay, LastDay: window.LastDay},
	}
}

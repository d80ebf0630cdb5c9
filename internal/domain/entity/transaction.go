// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used for transaction dates.
// Dates carry no timezone and compare lexicographically.
const DateLayout = "2006-01-02"

// Transaction represents a single recorded spending event.
// Transactions are never mutated after creation.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Date        string // YYYY-MM-DD
	Description string
	Amount      int64 // Whole yen, sign unconstrained
	Category    string
	CreatedAt   time.Time
}

// NewTransaction creates a new Transaction entity with a fresh ID.
func NewTransaction(
	userID uuid.UUID,
	date string,
	description string,
	amount int64,
	category string,
) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        date,
		Description: description,
		Amount:      amount,
		Category:    category,
		CreatedAt:   time.Now().UTC(),
	}
}

// SumAmounts returns the exact sum of amount over the given transactions.
func SumAmounts(transactions []*Transaction) int64 {
	var total int64
	for _, t := range transactions {
		total += t.Amount
	}
	return total
}

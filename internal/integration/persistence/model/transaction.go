// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/kakeibo/backend/internal/domain/entity"
)

// TransactionModel represents the transactions table in the database.
// Date is kept as YYYY-MM-DD text so range queries compare lexicographically
// and no timezone is ever applied.
type TransactionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_transactions_user_date,priority:1"`
	Date        string    `gorm:"type:varchar(10);not null;index:idx_transactions_user_date,priority:2"`
	Description string    `gorm:"type:varchar(255);not null"`
	Amount      int64     `gorm:"type:bigint;not null"`
	Category    string    `gorm:"type:varchar(32);not null"`
	CreatedAt   time.Time `gorm:"not null"`

	User *UserModel `gorm:"foreignKey:UserID;references:ID"`
}

// TableName returns the table name for the TransactionModel.
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToEntity converts a TransactionModel to a domain Transaction entity.
func (m *TransactionModel) ToEntity() *entity.Transaction {
	return &entity.Transaction{
		ID:          m.ID,
		UserID:      m.UserID,
		Date:        m.Date,
		Description: m.Description,
		Amount:      m.Amount,
		Category:    m.Category,
		CreatedAt:   m.CreatedAt,
	}
}

// TransactionFromEntity creates a TransactionModel from a domain Transaction entity.
func TransactionFromEntity(t *entity.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:          t.ID,
		UserID:      t.UserID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
		CreatedAt:   t.CreatedAt,
	}
}

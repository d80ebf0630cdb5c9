package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
	"github.com/kakeibo/backend/internal/integration/entrypoint/dto"
)

// TransactionStore reads and appends transactions through the API. The API
// scopes every call to the token subject, so the owner passed in must match
// the signed-in identity.
type TransactionStore struct {
	client *Client
}

var _ adapter.TransactionStore = (*TransactionStore)(nil)

// NewTransactionStore creates a store over client.
func NewTransactionStore(client *Client) *TransactionStore {
	return &TransactionStore{client: client}
}

// ListByOwnerAndRange returns the owner's transactions in [firstDay, lastDay], newest first.
func (s *TransactionStore) ListByOwnerAndRange(ctx context.Context, ownerID uuid.UUID, firstDay, lastDay string) ([]*entity.Transaction, error) {
	if err := s.checkOwner(ownerID); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("from", firstDay)
	query.Set("to", lastDay)

	var resp dto.TransactionListResponse
	if err := s.client.doAuthenticated(ctx, http.MethodGet, "/transactions?"+query.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	transactions := make([]*entity.Transaction, 0, len(resp.Transactions))
	for _, item := range resp.Transactions {
		t, err := transactionFromResponse(item)
		if err != nil {
			return nil, err
		}
		if t.UserID != ownerID {
			return nil, fmt.Errorf("api returned transaction %s of another owner", t.ID)
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}

// Append creates the transaction. On success the server-assigned ID and
// creation time are copied back onto transaction.
func (s *TransactionStore) Append(ctx context.Context, transaction *entity.Transaction) error {
	if err := s.checkOwner(transaction.UserID); err != nil {
		return err
	}

	var resp dto.TransactionResponse
	err := s.client.doAuthenticated(ctx, http.MethodPost, "/transactions", dto.CreateTransactionRequest{
		Date:        transaction.Date,
		Description: transaction.Description,
		Amount:      transaction.Amount,
		Category:    transaction.Category,
	}, &resp)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	created, err := transactionFromResponse(resp)
	if err != nil {
		return err
	}
	transaction.ID = created.ID
	transaction.CreatedAt = created.CreatedAt
	transaction.Category = created.Category
	return nil
}

func (s *TransactionStore) checkOwner(ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return domainerror.ErrMissingOwner
	}
	creds, err := s.client.credentials.Load()
	if err != nil {
		return err
	}
	if creds == nil {
		return domainerror.ErrNoSession
	}
	if creds.UserID != ownerID {
		return fmt.Errorf("owner %s is not the signed-in user", ownerID)
	}
	return nil
}

func transactionFromResponse(item dto.TransactionResponse) (*entity.Transaction, error) {
	id, err := uuid.Parse(item.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q in response: %w", item.ID, err)
	}
	owner, err := uuid.Parse(item.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id %q in response: %w", item.UserID, err)
	}
	return &entity.Transaction{
		ID:          id,
		UserID:      owner,
		Date:        item.Date,
		Description: item.Description,
		Amount:      item.Amount,
		Category:    item.Category,
		CreatedAt:   item.CreatedAt,
	}, nil
}

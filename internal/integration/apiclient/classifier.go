package apiclient

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	"github.com/kakeibo/backend/internal/integration/entrypoint/dto"
)

// Classifier asks the API's guess endpoint for a category. It makes exactly
// one attempt and never fails: any transport error, non-2xx status or
// unusable body yields the fallback category.
type Classifier struct {
	client *Client
}

var _ adapter.CategoryClassifier = (*Classifier)(nil)

// NewClassifier creates a classifier over client.
func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// Classify returns a vocabulary label for description, or the fallback.
func (c *Classifier) Classify(ctx context.Context, description string) string {
	var resp dto.GuessCategoryResponse
	err := c.client.doAuthenticated(ctx, http.MethodPost, "/categories/guess", dto.GuessCategoryRequest{Description: description}, &resp)
	if err != nil {
		slog.Warn("Category guess failed, using fallback", "error", err)
		return entity.CategoryFallback
	}
	return entity.NormalizeCategory(resp.Category)
}

// Categories lists the category vocabulary known to the API.
func (c *Classifier) Categories(ctx context.Context) (*dto.CategoryListResponse, error) {
	var resp dto.CategoryListResponse
	if err := c.client.doAuthenticated(ctx, http.MethodGet, "/categories", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

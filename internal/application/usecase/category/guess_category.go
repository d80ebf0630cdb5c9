// Package category contains category-related use cases.
package category

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
)

// GuessCategoryInput represents the input for guessing a category.
type GuessCategoryInput struct {
	Description string
}

// GuessCategoryOutput represents the output of guessing a category.
// Category is always set, to the fallback when an error is also returned.
type GuessCategoryOutput struct {
	Category string
}

// GuessCategoryUseCase asks the AI suggester for one vocabulary label.
type GuessCategoryUseCase struct {
	suggester adapter.CategorySuggester
}

// NewGuessCategoryUseCase creates a new GuessCategoryUseCase instance.
func NewGuessCategoryUseCase(suggester adapter.CategorySuggester) *GuessCategoryUseCase {
	return &GuessCategoryUseCase{
		suggester: suggester,
	}
}

// Execute guesses the category of a description. An answer outside the
// vocabulary is coerced to the fallback.
func (uc *GuessCategoryUseCase) Execute(ctx context.Context, input GuessCategoryInput) (*GuessCategoryOutput, error) {
	fallback := &GuessCategoryOutput{Category: entity.CategoryFallback}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return fallback, domainerror.NewCategoryError(
			domainerror.ErrCodeEmptyClassificationInput,
			"description is required",
			domainerror.ErrEmptyClassificationInput,
		)
	}

	if uc.suggester == nil || !uc.suggester.IsAvailable() {
		slog.Warn("Category classifier unavailable, using fallback",
			"cause", "no AI suggester configured",
			"fallback", entity.CategoryFallback,
		)
		return fallback, domainerror.NewCategoryError(
			domainerror.ErrCodeClassifierUnavailable,
			"category classifier is not configured",
			domainerror.ErrClassifierUnavailable,
		)
	}

	raw, err := uc.suggester.SuggestCategory(ctx, description, entity.CategoryVocabulary())
	if err != nil {
		slog.Warn("Category suggestion failed, using fallback",
			"error", err,
			"fallback", entity.CategoryFallback,
		)
		return fallback, domainerror.NewCategoryError(
			domainerror.ErrCodeClassificationFailed,
			"failed to classify description",
			err,
		)
	}

	category := entity.NormalizeCategory(raw)
	if category == entity.CategoryFallback {
		slog.Debug("Suggestion outside vocabulary, using fallback", "raw", raw)
	}

	return &GuessCategoryOutput{Category: category}, nil
}

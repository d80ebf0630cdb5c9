package category

import (
	"context"
	"errors"
	"log/slog"

	domainerror "github.com/kakeibo/backend/internal/domain/error"
)

// Classifier adapts GuessCategoryUseCase to the never-failing
// adapter.CategoryClassifier used when recording transactions.
type Classifier struct {
	guess *GuessCategoryUseCase
}

// NewClassifier creates a new Classifier.
func NewClassifier(guess *GuessCategoryUseCase) *Classifier {
	return &Classifier{guess: guess}
}

// Classify returns the guessed category, or the fallback on any failure.
// Fallbacks from a missing or failing suggester are already logged at WARN
// by GuessCategoryUseCase; only input problems are logged here.
func (c *Classifier) Classify(ctx context.Context, description string) string {
	out, err := c.guess.Execute(ctx, GuessCategoryInput{Description: description})
	if errors.Is(err, domainerror.ErrEmptyClassificationInput) {
		slog.Debug("Classification skipped for empty description")
	}
	return out.Category
}

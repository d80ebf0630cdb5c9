// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "context"

// CategorySuggester asks an external AI service for exactly one label out of
// the given candidates. Implementations return the raw answer and an error on
// any transport or response problem; normalization happens in the use case.
type CategorySuggester interface {
	// SuggestCategory sends the description with the candidate labels and returns the raw answer.
	SuggestCategory(ctx context.Context, description string, candidates []string) (string, error)

	// IsAvailable checks if the AI service is available and properly configured.
	IsAvailable() bool
}

// CategoryClassifier infers a category for a free-text description.
// Classify never fails: any problem resolves to the fallback category.
type CategoryClassifier interface {
	Classify(ctx context.Context, description string) string
}

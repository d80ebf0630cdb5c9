// Package category contains category-related use cases.
package category

import (
	"github.com/kakeibo/backend/internal/domain/entity"
)

// ListCategoriesOutput represents the output of listing categories.
type ListCategoriesOutput struct {
	Categories []string
	Fallback   string
	Manual     string
}

// ListCategoriesUseCase lists the fixed category vocabulary.
type ListCategoriesUseCase struct{}

// NewListCategoriesUseCase creates a new ListCategoriesUseCase instance.
func NewListCategoriesUseCase() *ListCategoriesUseCase {
	return &ListCategoriesUseCase{}
}

// Execute returns the vocabulary in display order along with the two sentinels.
func (uc *ListCategoriesUseCase) Execute() *ListCategoriesOutput {
	return &ListCategoriesOutput{
		Categories: entity.CategoryVocabulary(),
		Fallback:   entity.CategoryFallback,
		Manual:     entity.CategoryManual,
	}
}

// Package entity defines the core business entities for the domain layer.
package entity

import "strings"

// Category labels offered to the classifier. The vocabulary is closed.
const (
	CategoryFood          = "食費"
	CategoryDailyGoods    = "日用品"
	CategoryTransport     = "交通費"
	CategorySocial        = "交際費"
	CategoryEntertainment = "娯楽"
	CategoryClothing      = "衣服"
	CategoryBeauty        = "美容"
	CategoryHealth        = "健康"
	CategoryFixedCosts    = "固定費"
	CategoryOtherLabel    = "その他"
)

// Sentinel categories that are not produced by the classifier.
const (
	// CategoryFallback is stored whenever automatic classification cannot be obtained.
	CategoryFallback = "other"
	// CategoryManual is stored when the user opts out of classification.
	CategoryManual = "manual"
)

var categoryVocabulary = []string{
	CategoryFood,
	CategoryDailyGoods,
	CategoryTransport,
	CategorySocial,
	CategoryEntertainment,
	CategoryClothing,
	CategoryBeauty,
	CategoryHealth,
	CategoryFixedCosts,
	CategoryOtherLabel,
}

// CategoryVocabulary returns the classifier labels in prompt order.
func CategoryVocabulary() []string {
	labels := make([]string, len(categoryVocabulary))
	copy(labels, categoryVocabulary)
	return labels
}

// IsVocabularyLabel reports whether label is one of the classifier labels.
func IsVocabularyLabel(label string) bool {
	for _, l := range categoryVocabulary {
		if l == label {
			return true
		}
	}
	return false
}

// IsStorableCategory reports whether a category may be persisted on a transaction.
func IsStorableCategory(category string) bool {
	return IsVocabularyLabel(category) || category == CategoryFallback || category == CategoryManual
}

// NormalizeCategory trims a raw classifier answer and coerces anything
// outside the vocabulary to CategoryFallback.
func NormalizeCategory(raw string) string {
	label := strings.TrimSpace(raw)
	if !IsVocabularyLabel(label) {
		return CategoryFallback
	}
	return label
}

// Package dto defines data transfer objects for API requests and responses.
package dto

// GuessCategoryRequest represents the request body for guessing a category.
type GuessCategoryRequest struct {
	Description string `json:"description"`
}

// GuessCategoryResponse is returned on success and, with the fallback, on failure.
type GuessCategoryResponse struct {
	Category string `json:"category"`
}

// CategoryListResponse represents the category vocabulary.
type CategoryListResponse struct {
	Categories []string `json:"categories"`
	Fallback   string   `json:"fallback"`
	Manual     string   `json:"manual"`
}

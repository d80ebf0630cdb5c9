package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kakeibo/backend/internal/application/usecase/category"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
	"github.com/kakeibo/backend/internal/integration/entrypoint/dto"
)

// CategoryController handles category endpoints.
type CategoryController struct {
	listUseCase  *category.ListCategoriesUseCase
	guessUseCase *category.GuessCategoryUseCase
}

// NewCategoryController creates a new category controller instance.
func NewCategoryController(
	listUseCase *category.ListCategoriesUseCase,
	guessUseCase *category.GuessCategoryUseCase,
) *CategoryController {
	return &CategoryController{
		listUseCase:  listUseCase,
		guessUseCase: guessUseCase,
	}
}

// List handles GET /categories requests.
func (c *CategoryController) List(ctx *gin.Context) {
	output := c.listUseCase.Execute()

	ctx.JSON(http.StatusOK, dto.CategoryListResponse{
		Categories: output.Categories,
		Fallback:   output.Fallback,
		Manual:     output.Manual,
	})
}

// Guess handles POST /categories/guess requests.
// Any classifier failure still answers with the fallback category, under a 500 status.
func (c *CategoryController) Guess(ctx *gin.Context) {
	var req dto.GuessCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeEmptyClassificationInput),
		})
		return
	}

	output, err := c.guessUseCase.Execute(ctx.Request.Context(), category.GuessCategoryInput{
		Description: req.Description,
	})
	if err != nil {
		var catErr *domainerror.CategoryError
		if errors.As(err, &catErr) && catErr.Code == domainerror.ErrCodeEmptyClassificationInput {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: catErr.Message,
				Code:  string(catErr.Code),
			})
			return
		}

		ctx.JSON(http.StatusInternalServerError, dto.GuessCategoryResponse{
			Category: output.Category,
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.GuessCategoryResponse{
		Category: output.Category,
	})
}

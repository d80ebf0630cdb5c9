package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kakeibo/backend/internal/application/usecase/transaction"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
	"github.com/kakeibo/backend/internal/domain/valueobject"
	"github.com/kakeibo/backend/internal/integration/entrypoint/dto"
	"github.com/kakeibo/backend/internal/integration/entrypoint/middleware"
)

// TransactionController handles transaction endpoints.
type TransactionController struct {
	listUseCase   *transaction.ListTransactionsUseCase
	createUseCase *transaction.CreateTransactionUseCase
	now           func() time.Time
}

// NewTransactionController creates a new transaction controller instance.
// now picks the default month; nil means time.Now.
func NewTransactionController(
	listUseCase *transaction.ListTransactionsUseCase,
	createUseCase *transaction.CreateTransactionUseCase,
	now func() time.Time,
) *TransactionController {
	if now == nil {
		now = time.Now
	}
	return &TransactionController{
		listUseCase:   listUseCase,
		createUseCase: createUseCase,
		now:           now,
	}
}

// List handles GET /transactions requests.
// The range comes from from/to, or from month (YYYY-MM), defaulting to the current month.
func (c *TransactionController) List(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Unauthorized",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}

	input := transaction.ListTransactionsInput{UserID: userID}

	from, to := ctx.Query("from"), ctx.Query("to")
	switch {
	case from != "" || to != "":
		if from == "" || to == "" {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Both from and to are required",
				Code:  string(domainerror.ErrCodeInvalidDateRange),
			})
			return
		}
		input.FirstDay = from
		input.LastDay = to
	default:
		target := c.now()
		if monthStr := ctx.Query("month"); monthStr != "" {
			month, err := valueobject.ParseMonth(monthStr)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
					Error:   "Invalid month",
					Code:    string(domainerror.ErrCodeInvalidDateRange),
					Details: err.Error(),
				})
				return
			}
			target = month
		}
		window := valueobject.ComputeWindow(target)
		input.FirstDay = window.FirstDay
		input.LastDay = window.LastDay
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleTransactionError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTransactionListResponse(output.Transactions, output.TotalAmount, output.Window))
}

// Create handles POST /transactions requests.
func (c *TransactionController) Create(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Unauthorized",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}

	var req dto.CreateTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingTransactionFields),
			Details: err.Error(),
		})
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), transaction.CreateTransactionInput{
		UserID:      userID,
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
	})
	if err != nil {
		c.handleTransactionError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToTransactionResponse(output.Transaction))
}

// handleTransactionError handles transaction errors and returns appropriate HTTP responses.
func (c *TransactionController) handleTransactionError(ctx *gin.Context, err error) {
	var txnErr *domainerror.TransactionError
	if errors.As(err, &txnErr) {
		statusCode := c.getStatusCodeForTransactionError(txnErr.Code)
		if statusCode >= http.StatusInternalServerError {
			slog.Error("Transaction store failure", "code", txnErr.Code, "error", err)
		}
		ctx.JSON(statusCode, dto.ErrorResponse{
			Error: txnErr.Message,
			Code:  string(txnErr.Code),
		})
		return
	}

	slog.Error("Transaction request failed", "path", ctx.FullPath(), "error", err)

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// getStatusCodeForTransactionError maps transaction error codes to HTTP status codes.
func (c *TransactionController) getStatusCodeForTransactionError(code domainerror.TransactionErrorCode) int {
	switch code {
	case domainerror.ErrCodeInvalidTransactionDate,
		domainerror.ErrCodeInvalidDateRange,
		domainerror.ErrCodeEmptyDescription,
		domainerror.ErrCodeDescriptionTooLong,
		domainerror.ErrCodeInvalidTransactionCategory,
		domainerror.ErrCodeMissingTransactionFields:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kakeibo/backend/internal/application/usecase/auth"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
	"github.com/kakeibo/backend/internal/integration/entrypoint/dto"
	"github.com/kakeibo/backend/internal/integration/entrypoint/middleware"
)

// AuthController handles authentication endpoints.
type AuthController struct {
	registerUseCase         *auth.RegisterUserUseCase
	loginUseCase            *auth.LoginUserUseCase
	refreshTokenUseCase     *auth.RefreshTokenUseCase
	logoutUseCase           *auth.LogoutUserUseCase
	googleSignInUseCase     *auth.GoogleSignInUseCase
	requestLoginLinkUseCase *auth.RequestLoginLinkUseCase
	verifyLoginLinkUseCase  *auth.VerifyLoginLinkUseCase
	getCurrentUserUseCase   *auth.GetCurrentUserUseCase
}

// NewAuthController creates a new auth controller instance.
func NewAuthController(
	registerUseCase *auth.RegisterUserUseCase,
	loginUseCase *auth.LoginUserUseCase,
	refreshTokenUseCase *auth.RefreshTokenUseCase,
	logoutUseCase *auth.LogoutUserUseCase,
	googleSignInUseCase *auth.GoogleSignInUseCase,
	requestLoginLinkUseCase *auth.RequestLoginLinkUseCase,
	verifyLoginLinkUseCase *auth.VerifyLoginLinkUseCase,
	getCurrentUserUseCase *auth.GetCurrentUserUseCase,
) *AuthController {
	return &AuthController{
		registerUseCase:         registerUseCase,
		loginUseCase:            loginUseCase,
		refreshTokenUseCase:     refreshTokenUseCase,
		logoutUseCase:           logoutUseCase,
		googleSignInUseCase:     googleSignInUseCase,
		requestLoginLinkUseCase: requestLoginLinkUseCase,
		verifyLoginLinkUseCase:  verifyLoginLinkUseCase,
		getCurrentUserUseCase:   getCurrentUserUseCase,
	}
}

// Register handles POST /auth/register requests.
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	output, err := c.registerUseCase.Execute(ctx.Request.Context(), auth.RegisterUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.AuthResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		User:         dto.ToUserResponse(output.User),
	})
}

// Login handles POST /auth/login requests.
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	output, err := c.loginUseCase.Execute(ctx.Request.Context(), auth.LoginUserInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		User:         dto.ToUserResponse(output.User),
	})
}

// RefreshToken handles POST /auth/refresh requests.
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}

	output, err := c.refreshTokenUseCase.Execute(ctx.Request.Context(), auth.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
	})
}

// Logout handles POST /auth/logout requests.
func (c *AuthController) Logout(ctx *gin.Context) {
	var req dto.LogoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		// Even with invalid body, return success for logout
		ctx.JSON(http.StatusOK, dto.MessageResponse{
			Message: auth.SignedOutMessage,
		})
		return
	}

	output, err := c.logoutUseCase.Execute(ctx.Request.Context(), auth.LogoutUserInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil || output == nil {
		ctx.JSON(http.StatusOK, dto.MessageResponse{
			Message: auth.SignedOutMessage,
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageResponse{
		Message: output.Message,
	})
}

// GoogleSignIn handles POST /auth/google requests.
func (c *AuthController) GoogleSignIn(ctx *gin.Context) {
	var req dto.GoogleSignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	output, err := c.googleSignInUseCase.Execute(ctx.Request.Context(), auth.GoogleSignInInput{
		IDToken: req.IDToken,
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}

	status := http.StatusOK
	if output.Created {
		status = http.StatusCreated
	}
	ctx.JSON(status, dto.AuthResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		User:         dto.ToUserResponse(output.User),
	})
}

// RequestLoginLink handles POST /auth/email-link requests.
func (c *AuthController) RequestLoginLink(ctx *gin.Context) {
	var req dto.LoginLinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeInvalidEmail),
		})
		return
	}

	output, err := c.requestLoginLinkUseCase.Execute(ctx.Request.Context(), auth.RequestLoginLinkInput{
		Email: req.Email,
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusAccepted, dto.MessageResponse{
		Message: output.Message,
	})
}

// VerifyLoginLink handles POST /auth/email-link/verify requests.
func (c *AuthController) VerifyLoginLink(ctx *gin.Context) {
	var req dto.VerifyLoginLinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}

	output, err := c.verifyLoginLinkUseCase.Execute(ctx.Request.Context(), auth.VerifyLoginLinkInput{
		Token: req.Token,
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		User:         dto.ToUserResponse(output.User),
	})
}

// Me handles GET /auth/me requests.
func (c *AuthController) Me(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Unauthorized",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}

	identity, err := c.getCurrentUserUseCase.Execute(ctx.Request.Context(), userID)
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToIdentityResponse(identity))
}

// handleAuthError handles authentication errors and returns appropriate HTTP responses.
func (c *AuthController) handleAuthError(ctx *gin.Context, err error) {
	var authErr *domainerror.AuthError
	if errors.As(err, &authErr) {
		statusCode := c.getStatusCodeForAuthError(authErr.Code)
		ctx.JSON(statusCode, dto.ErrorResponse{
			Error: authErr.Message,
			Code:  string(authErr.Code),
		})
		return
	}

	slog.Error("Auth request failed", "path", ctx.FullPath(), "error", err)

	// Generic server error
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// getStatusCodeForAuthError maps auth error codes to HTTP status codes.
func (c *AuthController) getStatusCodeForAuthError(code domainerror.AuthErrorCode) int {
	switch code {
	case domainerror.ErrCodeEmailExists:
		return http.StatusConflict
	case domainerror.ErrCodeWeakPassword,
		domainerror.ErrCodeInvalidEmail,
		domainerror.ErrCodeMissingFields:
		return http.StatusBadRequest
	case domainerror.ErrCodeInvalidCredentials,
		domainerror.ErrCodeUserNotFound,
		domainerror.ErrCodeInvalidToken,
		domainerror.ErrCodeExpiredToken,
		domainerror.ErrCodeMissingToken,
		domainerror.ErrCodeInvalidLoginLink,
		domainerror.ErrCodeInvalidGoogleToken:
		return http.StatusUnauthorized
	case domainerror.ErrCodeLoginLinkUnavailable:
		return http.StatusServiceUnavailable
	case domainerror.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

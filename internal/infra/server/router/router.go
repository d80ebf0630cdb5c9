// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kakeibo/backend/internal/integration/entrypoint/controller"
	"github.com/kakeibo/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                *gin.Engine
	healthController      *controller.HealthController
	authController        *controller.AuthController
	transactionController *controller.TransactionController
	categoryController    *controller.CategoryController
	authRateLimiter       *middleware.RateLimiter
	authMiddleware        *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	authController *controller.AuthController,
	transactionController *controller.TransactionController,
	categoryController *controller.CategoryController,
	authRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:      healthController,
		authController:        authController,
		transactionController: transactionController,
		categoryController:    categoryController,
		authRateLimiter:       authRateLimiter,
		authMiddleware:        authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	if environment != "test" {
		r.engine.Use(gin.Logger())
	}

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	v1.GET("/health", r.healthController.Check)

	// Everything below needs the database
	if r.authController == nil || r.authMiddleware == nil {
		return
	}

	limited := r.authRateLimiter.Middleware()

	auth := v1.Group("/auth")
	{
		auth.POST("/register", r.authController.Register)
		auth.POST("/login", limited, r.authController.Login)
		auth.POST("/refresh", r.authController.RefreshToken)
		auth.POST("/logout", r.authController.Logout)
		auth.POST("/google", r.authController.GoogleSignIn)
		auth.POST("/email-link", limited, r.authController.RequestLoginLink)
		auth.POST("/email-link/verify", limited, r.authController.VerifyLoginLink)
		auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
	}

	if r.transactionController != nil {
		transactions := v1.Group("/transactions")
		transactions.Use(r.authMiddleware.Authenticate())
		{
			transactions.GET("", r.transactionController.List)
			transactions.POST("", r.transactionController.Create)
		}
	}

	if r.categoryController != nil {
		categories := v1.Group("/categories")
		categories.Use(r.authMiddleware.Authenticate())
		{
			categories.GET("", r.categoryController.List)
			categories.POST("/guess", r.categoryController.Guess)
		}
	}
}

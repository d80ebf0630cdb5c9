// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kakeibo/backend/config"
	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/application/usecase/auth"
	"github.com/kakeibo/backend/internal/application/usecase/category"
	"github.com/kakeibo/backend/internal/application/usecase/transaction"
	"github.com/kakeibo/backend/internal/infra/db"
	"github.com/kakeibo/backend/internal/infra/server/router"
	"github.com/kakeibo/backend/internal/integration/adapters"
	"github.com/kakeibo/backend/internal/integration/email"
	"github.com/kakeibo/backend/internal/integration/email/templates"
	"github.com/kakeibo/backend/internal/integration/entrypoint/controller"
	"github.com/kakeibo/backend/internal/integration/entrypoint/middleware"
	"github.com/kakeibo/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config   *config.Config
	Database *db.Database
	Redis    *redis.Client
	Router   *router.Router
}

// Options replaces external services that are otherwise built from Config.
// Nil fields use the configured implementation.
type Options struct {
	EmailSender      adapter.EmailSender
	Suggester        adapter.CategorySuggester
	IdentityVerifier adapter.IdentityVerifier
	Clock            func() time.Time
}

// NewInjector creates a new dependency injector with all dependencies wired.
// A nil database leaves only the health routes; a nil redis client disables
// email sign-in links.
func NewInjector(cfg *config.Config, database *db.Database, redisClient *redis.Client, opts Options) *Injector {
	suggester := opts.Suggester
	if suggester == nil {
		suggester = adapters.NewGeminiService(cfg.Classifier.GeminiAPIKey, cfg.Classifier.Model, cfg.Classifier.Timeout)
	}
	if !suggester.IsAvailable() {
		slog.Warn("GEMINI_API_KEY not set, category guesses will use the fallback")
	}

	healthController := controller.NewHealthController(
		databaseChecker(database),
		redisChecker(redisClient),
		suggester.IsAvailable,
	)

	if database == nil {
		slog.Warn("Auth, transaction and category systems not initialized due to missing database connection")
		return &Injector{
			Config: cfg,
			Redis:  redisClient,
			Router: router.NewRouter(healthController, nil, nil, nil, nil, nil),
		}
	}

	// Create repositories
	userRepo := persistence.NewUserRepository(database.DB())
	tokenRepo := persistence.NewTokenRepository(database.DB())
	transactionRepo := persistence.NewTransactionRepository(database.DB())

	var linkStore adapter.LoginLinkStore
	if redisClient != nil {
		linkStore = persistence.NewLoginLinkStore(redisClient)
	}

	// Create adapters/services
	passwordService := adapters.NewPasswordService()
	tokenService := adapters.NewTokenService(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		tokenRepo,
	)

	verifier := opts.IdentityVerifier
	if verifier == nil {
		verifier = adapters.NewGoogleVerifier(cfg.Google.ClientID)
	}

	mailer := newLoginLinkMailer(cfg, opts.EmailSender)

	// Create auth use cases
	registerUseCase := auth.NewRegisterUserUseCase(userRepo, passwordService, tokenService)
	loginUseCase := auth.NewLoginUserUseCase(userRepo, passwordService, tokenService)
	refreshTokenUseCase := auth.NewRefreshTokenUseCase(tokenService)
	logoutUseCase := auth.NewLogoutUserUseCase(tokenService)
	googleSignInUseCase := auth.NewGoogleSignInUseCase(userRepo, verifier, tokenService)
	requestLoginLinkUseCase := auth.NewRequestLoginLinkUseCase(linkStore, mailer, cfg.Email.AppBaseURL, cfg.Email.LoginLinkTTL)
	verifyLoginLinkUseCase := auth.NewVerifyLoginLinkUseCase(linkStore, userRepo, tokenService)
	getCurrentUserUseCase := auth.NewGetCurrentUserUseCase(userRepo)

	// Create category use cases
	listCategoriesUseCase := category.NewListCategoriesUseCase()
	guessCategoryUseCase := category.NewGuessCategoryUseCase(suggester)
	classifier := category.NewClassifier(guessCategoryUseCase)

	// Create transaction use cases
	listTransactionsUseCase := transaction.NewListTransactionsUseCase(transactionRepo)
	createTransactionUseCase := transaction.NewCreateTransactionUseCase(transactionRepo, classifier)

	// Create controllers
	authController := controller.NewAuthController(
		registerUseCase,
		loginUseCase,
		refreshTokenUseCase,
		logoutUseCase,
		googleSignInUseCase,
		requestLoginLinkUseCase,
		verifyLoginLinkUseCase,
		getCurrentUserUseCase,
	)
	transactionController := controller.NewTransactionController(listTransactionsUseCase, createTransactionUseCase, opts.Clock)
	categoryController := controller.NewCategoryController(listCategoriesUseCase, guessCategoryUseCase)

	// Create middleware
	authRateLimiter := middleware.NewRateLimiter()
	if cfg.Server.Environment == "test" || cfg.Server.Environment == "e2e" {
		authRateLimiter.Disable()
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	r := router.NewRouter(
		healthController,
		authController,
		transactionController,
		categoryController,
		authRateLimiter,
		authMiddleware,
	)

	slog.Info("Auth, transaction and category systems initialized successfully",
		"email_sign_in", linkStore != nil && mailer != nil,
		"classifier", suggester.IsAvailable(),
	)

	return &Injector{
		Config:   cfg,
		Database: database,
		Redis:    redisClient,
		Router:   r,
	}
}

// newLoginLinkMailer returns nil when no sender can be built, which disables
// email sign-in.
func newLoginLinkMailer(cfg *config.Config, sender adapter.EmailSender) adapter.LoginLinkMailer {
	if sender == nil {
		if cfg.Email.ResendAPIKey == "" {
			slog.Warn("RESEND_API_KEY not set, email sign-in disabled")
			return nil
		}
		client, err := email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail, cfg.Email.ResendBaseURL)
		if err != nil {
			slog.Error("Failed to create Resend client, email sign-in disabled", "error", err)
			return nil
		}
		sender = client
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		slog.Error("Failed to load email templates, email sign-in disabled", "error", err)
		return nil
	}

	return email.NewService(sender, renderer)
}

func databaseChecker(database *db.Database) func() bool {
	if database == nil {
		return func() bool { return false }
	}
	return database.HealthCheck
}

func redisChecker(client *redis.Client) func() bool {
	if client == nil {
		return func() bool { return false }
	}
	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx).Err() == nil
	}
}

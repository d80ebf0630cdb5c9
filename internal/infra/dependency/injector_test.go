package dependency

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/kakeibo/backend/config"
	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	"github.com/kakeibo/backend/internal/infra/db"
	"github.com/kakeibo/backend/internal/integration/email"
	"github.com/kakeibo/backend/internal/integration/entrypoint/dto"
	"github.com/kakeibo/backend/internal/integration/persistence/model"
)

type stubSuggester struct {
	answer string
	err    error
}

func (s *stubSuggester) SuggestCategory(ctx context.Context, description string, candidates []string) (string, error) {
	return s.answer, s.err
}

func (s *stubSuggester) IsAvailable() bool { return true }

type stubVerifier struct {
	identity *adapter.ExternalIdentity
}

func (v *stubVerifier) Verify(ctx context.Context, idToken string) (*adapter.ExternalIdentity, error) {
	if idToken != "good-token" {
		return nil, errors.New("bad token")
	}
	return v.identity, nil
}

type apiHarness struct {
	t         *testing.T
	engine    *gin.Engine
	suggester *stubSuggester
	sender    *email.MockEmailSender
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()

	cfg := &config.Config{
		Server:   config.ServerConfig{Environment: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", URL: "file::memory:", MaxOpenConns: 1, MaxIdleConns: 1},
		JWT:      config.JWTConfig{Secret: "test-secret", AccessTokenExpiry: time.Minute, RefreshTokenExpiry: time.Hour},
		Email:    config.EmailConfig{AppBaseURL: "http://kakeibo.test", LoginLinkTTL: 15 * time.Minute},
	}

	database, err := db.NewConnection(&cfg.Database)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := database.AutoMigrate(&model.UserModel{}, &model.RefreshTokenModel{}, &model.TransactionModel{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	server := miniredis.RunT(t)
	cfg.Redis.URL = "redis://" + server.Addr() + "/0"
	redisClient, err := db.NewRedisClient(&cfg.Redis)
	if err != nil {
		t.Fatalf("failed to connect redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	h := &apiHarness{
		t:         t,
		suggester: &stubSuggester{answer: entity.CategoryFood},
		sender:    email.NewMockEmailSender(),
	}
	injector := NewInjector(cfg, database, redisClient, Options{
		EmailSender: h.sender,
		Suggester:   h.suggester,
		IdentityVerifier: &stubVerifier{identity: &adapter.ExternalIdentity{
			Subject:       "google-sub-1",
			Email:         "hanako@example.com",
			EmailVerified: true,
			Name:          "Hanako",
		}},
	})
	h.engine = injector.Router.Setup(cfg.Server.Environment)
	return h
}

func (h *apiHarness) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func (h *apiHarness) register(email string) dto.AuthResponse {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email: email, Name: "Taro", Password: "password123",
	})
	if rec.Code != http.StatusCreated {
		h.t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[dto.AuthResponse](h.t, rec)
}

func TestAPI_Health(t *testing.T) {
	h := newAPIHarness(t)

	rec := h.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	health := decode[map[string]string](t, rec)
	if health["status"] != "ok" || health["database"] != "connected" || health["redis"] != "connected" {
		t.Errorf("unexpected health response: %v", health)
	}
}

func TestAPI_PasswordSessionLifecycle(t *testing.T) {
	h := newAPIHarness(t)
	auth := h.register("taro@example.com")

	t.Run("me returns the identity", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/api/v1/auth/me", auth.AccessToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		me := decode[dto.UserResponse](t, rec)
		if me.Email != "taro@example.com" || me.ID != auth.User.ID {
			t.Errorf("unexpected identity: %+v", me)
		}
	})

	t.Run("me without a token is unauthorized", func(t *testing.T) {
		if rec := h.do(http.MethodGet, "/api/v1/auth/me", "", nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
			Email: "taro@example.com", Password: "password123",
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("login with the wrong password", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
			Email: "taro@example.com", Password: "wrong-password",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("refresh rotates and logout revokes", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshTokenRequest{RefreshToken: auth.RefreshToken})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		pair := decode[dto.TokenResponse](t, rec)

		rec = h.do(http.MethodPost, "/api/v1/auth/logout", "", dto.LogoutRequest{RefreshToken: pair.RefreshToken})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		rec = h.do(http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 after logout, got %d", rec.Code)
		}
	})
}

func TestAPI_Transactions(t *testing.T) {
	h := newAPIHarness(t)
	token := h.register("taro@example.com").AccessToken

	post := func(req dto.CreateTransactionRequest) *httptest.ResponseRecorder {
		return h.do(http.MethodPost, "/api/v1/transactions", token, req)
	}

	rec := post(dto.CreateTransactionRequest{Date: "2024-02-10", Description: "Lunch", Amount: 800})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if created := decode[dto.TransactionResponse](t, rec); created.Category != entity.CategoryFood {
		t.Errorf("expected classified category %s, got %s", entity.CategoryFood, created.Category)
	}

	h.suggester.err = errors.New("quota exceeded")
	rec = post(dto.CreateTransactionRequest{Date: "2024-02-20", Description: "Mystery", Amount: 200})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 despite classifier failure, got %d", rec.Code)
	}
	if created := decode[dto.TransactionResponse](t, rec); created.Category != entity.CategoryFallback {
		t.Errorf("expected fallback category, got %s", created.Category)
	}

	rec = post(dto.CreateTransactionRequest{Date: "2024-03-01", Description: "Train", Amount: 300, Category: entity.CategoryManual})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	tests := []struct {
		name string
		req  dto.CreateTransactionRequest
	}{
		{"impossible date", dto.CreateTransactionRequest{Date: "2024-02-30", Description: "x", Amount: 1}},
		{"unknown category", dto.CreateTransactionRequest{Date: "2024-02-01", Description: "x", Amount: 1, Category: "travel"}},
		{"blank description", dto.CreateTransactionRequest{Date: "2024-02-01", Description: "   ", Amount: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := post(tt.req); rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("month query", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/api/v1/transactions?month=2024-02", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		list := decode[dto.TransactionListResponse](t, rec)
		if len(list.Transactions) != 2 || list.TotalAmount != 1000 {
			t.Errorf("expected 2 rows totalling 1000, got %d rows totalling %d", len(list.Transactions), list.TotalAmount)
		}
		if list.Window.FirstDay != "2024-02-01" || list.Window.LastDay != "2024-02-29" {
			t.Errorf("unexpected window: %+v", list.Window)
		}
		if list.Transactions[0].Date != "2024-02-20" {
			t.Errorf("expected newest first, got %s", list.Transactions[0].Date)
		}
	})

	t.Run("explicit range", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/api/v1/transactions?from=2024-02-15&to=2024-03-31", token, nil)
		list := decode[dto.TransactionListResponse](t, rec)
		if len(list.Transactions) != 2 || list.TotalAmount != 500 {
			t.Errorf("expected 2 rows totalling 500, got %d rows totalling %d", len(list.Transactions), list.TotalAmount)
		}
	})

	t.Run("half-open range is rejected", func(t *testing.T) {
		if rec := h.do(http.MethodGet, "/api/v1/transactions?from=2024-02-15", token, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("other owners see nothing", func(t *testing.T) {
		other := h.register("jiro@example.com").AccessToken
		rec := h.do(http.MethodGet, "/api/v1/transactions?month=2024-02", other, nil)
		list := decode[dto.TransactionListResponse](t, rec)
		if len(list.Transactions) != 0 || list.TotalAmount != 0 {
			t.Errorf("expected empty list, got %d rows", len(list.Transactions))
		}
	})

	t.Run("requires authentication", func(t *testing.T) {
		if rec := h.do(http.MethodGet, "/api/v1/transactions", "", nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAPI_Categories(t *testing.T) {
	h := newAPIHarness(t)
	token := h.register("taro@example.com").AccessToken

	rec := h.do(http.MethodGet, "/api/v1/categories", token, nil)
	list := decode[dto.CategoryListResponse](t, rec)
	if len(list.Categories) != 10 || list.Fallback != entity.CategoryFallback || list.Manual != entity.CategoryManual {
		t.Errorf("unexpected vocabulary: %+v", list)
	}

	guess := func(description string) *httptest.ResponseRecorder {
		return h.do(http.MethodPost, "/api/v1/categories/guess", token, dto.GuessCategoryRequest{Description: description})
	}

	h.suggester.answer = " 交通費\n"
	rec = guess("Suica charge")
	if rec.Code != http.StatusOK || decode[dto.GuessCategoryResponse](t, rec).Category != entity.CategoryTransport {
		t.Errorf("expected 200 %s, got %d %s", entity.CategoryTransport, rec.Code, rec.Body.String())
	}

	h.suggester.answer = "Travel"
	rec = guess("Hotel")
	if rec.Code != http.StatusOK || decode[dto.GuessCategoryResponse](t, rec).Category != entity.CategoryFallback {
		t.Errorf("expected off-vocabulary answer to coerce to fallback, got %d %s", rec.Code, rec.Body.String())
	}

	h.suggester.err = errors.New("upstream down")
	rec = guess("Hotel")
	if rec.Code != http.StatusInternalServerError || decode[dto.GuessCategoryResponse](t, rec).Category != entity.CategoryFallback {
		t.Errorf("expected 500 with fallback, got %d %s", rec.Code, rec.Body.String())
	}

	if rec := guess(""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty description, got %d", rec.Code)
	}
}

var loginTokenPattern = regexp.MustCompile(`token=([0-9a-f]+)`)

func TestAPI_EmailLink(t *testing.T) {
	h := newAPIHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/auth/email-link", "", dto.LoginLinkRequest{Email: "Hanako@Example.com"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(h.sender.SentEmails) != 1 {
		t.Fatalf("expected one email, got %d", len(h.sender.SentEmails))
	}
	sent := h.sender.SentEmails[0]
	if sent.To != "hanako@example.com" {
		t.Errorf("expected normalized recipient, got %s", sent.To)
	}
	match := loginTokenPattern.FindStringSubmatch(sent.Text)
	if match == nil {
		t.Fatalf("no token in email body: %s", sent.Text)
	}

	rec = h.do(http.MethodPost, "/api/v1/auth/email-link/verify", "", dto.VerifyLoginLinkRequest{Token: match[1]})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if auth := decode[dto.AuthResponse](t, rec); auth.User.Email != "hanako@example.com" || auth.AccessToken == "" {
		t.Errorf("unexpected auth response: %+v", auth)
	}

	rec = h.do(http.MethodPost, "/api/v1/auth/email-link/verify", "", dto.VerifyLoginLinkRequest{Token: match[1]})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 on reuse, got %d", rec.Code)
	}
}

func TestAPI_GoogleSignIn(t *testing.T) {
	h := newAPIHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/auth/google", "", dto.GoogleSignInRequest{IDToken: "good-token"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first sign-in, got %d: %s", rec.Code, rec.Body.String())
	}
	first := decode[dto.AuthResponse](t, rec)

	rec = h.do(http.MethodPost, "/api/v1/auth/google", "", dto.GoogleSignInRequest{IDToken: "good-token"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on returning sign-in, got %d", rec.Code)
	}
	if second := decode[dto.AuthResponse](t, rec); second.User.ID != first.User.ID {
		t.Errorf("expected the same user, got %s and %s", first.User.ID, second.User.ID)
	}

	rec = h.do(http.MethodPost, "/api/v1/auth/google", "", dto.GoogleSignInRequest{IDToken: "forged"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a rejected token, got %d", rec.Code)
	}
}

func TestNewInjector_WithoutDatabase(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Environment: "test"}}
	injector := NewInjector(cfg, nil, nil, Options{Suggester: &stubSuggester{}})
	engine := injector.Router.Setup(cfg.Server.Environment)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	health := decode[map[string]string](t, rec)
	if health["status"] != "degraded" || health["database"] != "disconnected" {
		t.Errorf("unexpected health response: %v", health)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without database, got %d", rec.Code)
	}
}

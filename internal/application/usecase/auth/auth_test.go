package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
)

type memoryUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domainerror.ErrUserNotFound
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domainerror.ErrUserNotFound
}

func (r *memoryUserRepo) FindByGoogleSubject(ctx context.Context, subject string) (*entity.User, error) {
	for _, u := range r.users {
		if u.GoogleSubject != "" && u.GoogleSubject == subject {
			return u, nil
		}
	}
	return nil, domainerror.ErrUserNotFound
}

func (r *memoryUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

type plainPasswords struct{}

func (plainPasswords) HashPassword(password string) (string, error) { return "hashed:" + password, nil }

func (plainPasswords) VerifyPassword(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func (plainPasswords) ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return domainerror.ErrWeakPassword
	}
	return nil
}

type stubTokens struct {
	revoked map[string]adapter.RevokeReason
	issued  int
}

func newStubTokens() *stubTokens {
	return &stubTokens{revoked: make(map[string]adapter.RevokeReason)}
}

func (s *stubTokens) GenerateTokenPair(ctx context.Context, userID uuid.UUID, email string) (*adapter.TokenPair, error) {
	s.issued++
	return &adapter.TokenPair{AccessToken: "access-" + userID.String(), RefreshToken: "refresh-" + userID.String()}, nil
}

func (s *stubTokens) ValidateAccessToken(ctx context.Context, token string) (*adapter.TokenClaims, error) {
	return nil, errors.New("not used")
}

func (s *stubTokens) ValidateRefreshToken(ctx context.Context, token string) (*adapter.TokenClaims, error) {
	id, err := uuid.Parse(strings.TrimPrefix(token, "refresh-"))
	if err != nil {
		return nil, domainerror.ErrInvalidToken
	}
	return &adapter.TokenClaims{UserID: id}, nil
}

func (s *stubTokens) RevokeRefreshToken(ctx context.Context, token string, reason adapter.RevokeReason) error {
	if _, done := s.revoked[token]; !done {
		s.revoked[token] = reason
	}
	return nil
}

func (s *stubTokens) LookupRefreshToken(ctx context.Context, token string) (*adapter.RefreshTokenRecord, error) {
	id, err := uuid.Parse(strings.TrimPrefix(token, "refresh-"))
	if err != nil {
		return nil, nil
	}
	record := &adapter.RefreshTokenRecord{UserID: id, ExpiresAt: time.Now().Add(time.Hour)}
	if reason, done := s.revoked[token]; done {
		at := time.Now()
		record.RevokedReason, record.RevokedAt = reason, &at
	}
	return record, nil
}

type stubVerifier struct {
	identity *adapter.ExternalIdentity
	err      error
}

func (v *stubVerifier) Verify(ctx context.Context, idToken string) (*adapter.ExternalIdentity, error) {
	return v.identity, v.err
}

type memoryLinkStore struct {
	tokens map[string]string
	ttl    time.Duration
}

func (s *memoryLinkStore) Save(ctx context.Context, token, email string, ttl time.Duration) error {
	if s.tokens == nil {
		s.tokens = make(map[string]string)
	}
	s.tokens[token] = email
	s.ttl = ttl
	return nil
}

func (s *memoryLinkStore) Consume(ctx context.Context, token string) (string, bool, error) {
	email, ok := s.tokens[token]
	delete(s.tokens, token)
	return email, ok, nil
}

type recordingMailer struct {
	to  string
	url string
	err error
}

func (m *recordingMailer) SendLoginLink(ctx context.Context, email, loginURL string, expiresIn time.Duration) error {
	m.to, m.url = email, loginURL
	return m.err
}

func assertAuthCode(t *testing.T, err error, code domainerror.AuthErrorCode) *domainerror.AuthError {
	t.Helper()
	var authErr *domainerror.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError %s, got %v", code, err)
	}
	if authErr.Code != code {
		t.Errorf("expected code %s, got %s", code, authErr.Code)
	}
	return authErr
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemoryUserRepo()
	tokens := newStubTokens()
	register := NewRegisterUserUseCase(repo, plainPasswords{}, tokens)
	login := NewLoginUserUseCase(repo, plainPasswords{}, tokens)
	ctx := context.Background()

	out, err := register.Execute(ctx, RegisterUserInput{Email: " Taro@Example.com ", Name: "Taro", Password: "password123"})
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if out.User.Email != "taro@example.com" {
		t.Errorf("expected normalized email, got %s", out.User.Email)
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := register.Execute(ctx, RegisterUserInput{Email: "taro@example.com", Password: "password123"})
		assertAuthCode(t, err, domainerror.ErrCodeEmailExists)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := register.Execute(ctx, RegisterUserInput{Email: "jiro@example.com", Password: "short"})
		assertAuthCode(t, err, domainerror.ErrCodeWeakPassword)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := register.Execute(ctx, RegisterUserInput{Email: "not-an-email", Password: "password123"})
		assertAuthCode(t, err, domainerror.ErrCodeInvalidEmail)
	})

	t.Run("login succeeds", func(t *testing.T) {
		got, err := login.Execute(ctx, LoginUserInput{Email: "TARO@example.com", Password: "password123"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.User.ID != out.User.ID {
			t.Errorf("expected user %s, got %s", out.User.ID, got.User.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := login.Execute(ctx, LoginUserInput{Email: "taro@example.com", Password: "wrong-password"})
		assertAuthCode(t, err, domainerror.ErrCodeInvalidCredentials)
	})

	t.Run("passwordless account cannot log in with a password", func(t *testing.T) {
		linkOnly := entity.NewUser("hanako@example.com", "", "")
		_ = repo.Create(ctx, linkOnly)
		_, err := login.Execute(ctx, LoginUserInput{Email: "hanako@example.com", Password: ""})
		assertAuthCode(t, err, domainerror.ErrCodeInvalidCredentials)
	})
}

func TestRefreshAndLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("refresh rotates the old token", func(t *testing.T) {
		tokens := newStubTokens()
		refresh := NewRefreshTokenUseCase(tokens)
		token := "refresh-" + uuid.NewString()

		if _, err := refresh.Execute(ctx, RefreshTokenInput{RefreshToken: token}); err != nil {
			t.Fatalf("unexpected refresh error: %v", err)
		}
		if tokens.revoked[token] != adapter.RevokeRotated {
			t.Errorf("expected old refresh token to be rotated, got %q", tokens.revoked[token])
		}

		_, err := refresh.Execute(ctx, RefreshTokenInput{RefreshToken: token})
		authErr := assertAuthCode(t, err, domainerror.ErrCodeInvalidToken)
		if authErr != nil && !strings.Contains(authErr.Message, "already exchanged") {
			t.Errorf("expected a reused-token message, got %q", authErr.Message)
		}
	})

	t.Run("logout marks the token signed out", func(t *testing.T) {
		tokens := newStubTokens()
		refresh := NewRefreshTokenUseCase(tokens)
		logout := NewLogoutUserUseCase(tokens)
		token := "refresh-" + uuid.NewString()

		out, err := logout.Execute(ctx, LogoutUserInput{RefreshToken: token})
		if err != nil {
			t.Fatalf("unexpected logout error: %v", err)
		}
		if out.Message != SignedOutMessage {
			t.Errorf("unexpected message %q", out.Message)
		}
		if tokens.revoked[token] != adapter.RevokeSignedOut {
			t.Errorf("expected token signed out, got %q", tokens.revoked[token])
		}

		_, err = refresh.Execute(ctx, RefreshTokenInput{RefreshToken: token})
		authErr := assertAuthCode(t, err, domainerror.ErrCodeInvalidToken)
		if authErr != nil && !strings.Contains(authErr.Message, "login link") {
			t.Errorf("expected the message to point at a login link, got %q", authErr.Message)
		}
	})

	t.Run("logout with a malformed token still succeeds", func(t *testing.T) {
		tokens := newStubTokens()
		out, err := NewLogoutUserUseCase(tokens).Execute(ctx, LogoutUserInput{RefreshToken: "garbage"})
		if err != nil || out.Message != SignedOutMessage {
			t.Fatalf("expected sign-out success, got %v, %v", out, err)
		}
		if len(tokens.revoked) != 0 {
			t.Errorf("expected nothing revoked, got %v", tokens.revoked)
		}
	})

	t.Run("logout after rotation keeps the rotated reason", func(t *testing.T) {
		tokens := newStubTokens()
		token := "refresh-" + uuid.NewString()
		if _, err := NewRefreshTokenUseCase(tokens).Execute(ctx, RefreshTokenInput{RefreshToken: token}); err != nil {
			t.Fatalf("unexpected refresh error: %v", err)
		}
		_, _ = NewLogoutUserUseCase(tokens).Execute(ctx, LogoutUserInput{RefreshToken: token})
		if tokens.revoked[token] != adapter.RevokeRotated {
			t.Errorf("expected rotated reason to stick, got %q", tokens.revoked[token])
		}
	})
}

func TestGoogleSignInUseCase(t *testing.T) {
	ctx := context.Background()
	google := &adapter.ExternalIdentity{Subject: "sub-1", Email: "Taro@example.com", EmailVerified: true, Name: "Taro"}

	t.Run("creates a user on first sign in", func(t *testing.T) {
		repo := newMemoryUserRepo()
		uc := NewGoogleSignInUseCase(repo, &stubVerifier{identity: google}, newStubTokens())

		out, err := uc.Execute(ctx, GoogleSignInInput{IDToken: "token"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.Created || out.User.GoogleSubject != "sub-1" || out.User.Email != "taro@example.com" {
			t.Errorf("unexpected user %+v created=%v", out.User, out.Created)
		}

		again, err := uc.Execute(ctx, GoogleSignInInput{IDToken: "token"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Created || again.User.ID != out.User.ID {
			t.Error("expected the second sign in to reuse the user")
		}
	})

	t.Run("links an existing account by email", func(t *testing.T) {
		repo := newMemoryUserRepo()
		existing := entity.NewUser("taro@example.com", "Taro", "hashed:password123")
		_ = repo.Create(ctx, existing)
		uc := NewGoogleSignInUseCase(repo, &stubVerifier{identity: google}, newStubTokens())

		out, err := uc.Execute(ctx, GoogleSignInInput{IDToken: "token"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Created || out.User.ID != existing.ID || existing.GoogleSubject != "sub-1" {
			t.Errorf("expected existing user to be linked, got %+v", out.User)
		}
	})

	t.Run("rejects unverified email", func(t *testing.T) {
		unverified := *google
		unverified.EmailVerified = false
		uc := NewGoogleSignInUseCase(newMemoryUserRepo(), &stubVerifier{identity: &unverified}, newStubTokens())

		_, err := uc.Execute(ctx, GoogleSignInInput{IDToken: "token"})
		assertAuthCode(t, err, domainerror.ErrCodeInvalidGoogleToken)
	})

	t.Run("rejects a token the verifier refuses", func(t *testing.T) {
		uc := NewGoogleSignInUseCase(newMemoryUserRepo(), &stubVerifier{err: errors.New("bad audience")}, newStubTokens())

		_, err := uc.Execute(ctx, GoogleSignInInput{IDToken: "token"})
		assertAuthCode(t, err, domainerror.ErrCodeInvalidGoogleToken)
	})
}

func TestLoginLink(t *testing.T) {
	ctx := context.Background()

	t.Run("request then verify once", func(t *testing.T) {
		store := &memoryLinkStore{}
		mailer := &recordingMailer{}
		repo := newMemoryUserRepo()
		request := NewRequestLoginLinkUseCase(store, mailer, "https://kakeibo.example", 15*time.Minute)
		verify := NewVerifyLoginLinkUseCase(store, repo, newStubTokens())

		if _, err := request.Execute(ctx, RequestLoginLinkInput{Email: "Taro@example.com"}); err != nil {
			t.Fatalf("unexpected request error: %v", err)
		}
		if mailer.to != "taro@example.com" {
			t.Errorf("expected mail to taro@example.com, got %s", mailer.to)
		}
		if store.ttl != 15*time.Minute {
			t.Errorf("expected ttl 15m, got %s", store.ttl)
		}
		if !strings.HasPrefix(mailer.url, "https://kakeibo.example/login/verify?token=") {
			t.Errorf("unexpected login url %s", mailer.url)
		}

		var token string
		for k := range store.tokens {
			token = k
		}

		out, err := verify.Execute(ctx, VerifyLoginLinkInput{Token: token})
		if err != nil {
			t.Fatalf("unexpected verify error: %v", err)
		}
		if !out.Created || out.User.Email != "taro@example.com" {
			t.Errorf("expected new user for taro@example.com, got %+v", out.User)
		}

		_, err = verify.Execute(ctx, VerifyLoginLinkInput{Token: token})
		assertAuthCode(t, err, domainerror.ErrCodeInvalidLoginLink)
	})

	t.Run("unavailable without a store", func(t *testing.T) {
		request := NewRequestLoginLinkUseCase(nil, &recordingMailer{}, "https://kakeibo.example", time.Minute)

		_, err := request.Execute(ctx, RequestLoginLinkInput{Email: "taro@example.com"})
		assertAuthCode(t, err, domainerror.ErrCodeLoginLinkUnavailable)
	})

	deliveryFailures := []struct {
		name     string
		mailErr  error
		wantCode domainerror.AuthErrorCode
		wantIs   error
	}{
		{
			name:     "provider outage asks to retry",
			mailErr:  domainerror.NewEmailError(domainerror.ErrCodeTemporaryEmailFailure, "temporary email failure", errors.New("503")),
			wantCode: domainerror.ErrCodeLoginLinkUnavailable,
			wantIs:   domainerror.ErrTemporaryEmailFailure,
		},
		{
			name:     "rejected address is a bad request",
			mailErr:  domainerror.NewEmailError(domainerror.ErrCodePermanentEmailFailure, "permanent email failure", errors.New("422")),
			wantCode: domainerror.ErrCodeInvalidEmail,
			wantIs:   domainerror.ErrPermanentEmailFailure,
		},
	}
	for _, tc := range deliveryFailures {
		t.Run(tc.name, func(t *testing.T) {
			store := &memoryLinkStore{}
			request := NewRequestLoginLinkUseCase(store, &recordingMailer{err: tc.mailErr}, "https://kakeibo.example", time.Minute)

			_, err := request.Execute(ctx, RequestLoginLinkInput{Email: "taro@example.com"})
			authErr := assertAuthCode(t, err, tc.wantCode)
			if !errors.Is(err, tc.wantIs) {
				t.Errorf("expected the delivery cause to be kept, got %v", err)
			}
			if authErr != nil && !strings.Contains(authErr.Message, "login link") {
				t.Errorf("expected the message to name the login link, got %q", authErr.Message)
			}
			if len(store.tokens) != 0 {
				t.Errorf("expected the unsent token to be discarded, got %v", store.tokens)
			}
		})
	}

	t.Run("unclassified mail error stays internal", func(t *testing.T) {
		store := &memoryLinkStore{}
		request := NewRequestLoginLinkUseCase(store, &recordingMailer{err: errors.New("template missing")}, "https://kakeibo.example", time.Minute)

		_, err := request.Execute(ctx, RequestLoginLinkInput{Email: "taro@example.com"})
		var authErr *domainerror.AuthError
		if err == nil || errors.As(err, &authErr) {
			t.Errorf("expected a plain error, got %v", err)
		}
	})
}

func TestGetCurrentUserUseCase(t *testing.T) {
	repo := newMemoryUserRepo()
	user := entity.NewUser("taro@example.com", "Taro", "")
	_ = repo.Create(context.Background(), user)
	uc := NewGetCurrentUserUseCase(repo)

	identity, err := uc.Execute(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.UserID != user.ID || identity.Email != user.Email {
		t.Errorf("unexpected identity %+v", identity)
	}

	_, err = uc.Execute(context.Background(), uuid.New())
	assertAuthCode(t, err, domainerror.ErrCodeUserNotFound)
}

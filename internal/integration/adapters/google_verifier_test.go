package adapters

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/api/idtoken"
)

func TestGoogleVerifier(t *testing.T) {
	t.Run("extracts identity claims", func(t *testing.T) {
		verifier := NewGoogleVerifier("client-id")
		var gotAudience string
		verifier.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
			gotAudience = audience
			return &idtoken.Payload{
				Subject: "1234",
				Claims: map[string]interface{}{
					"email":          "taro@example.com",
					"email_verified": true,
					"name":           "Taro",
				},
			}, nil
		}

		identity, err := verifier.Verify(context.Background(), "token")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotAudience != "client-id" {
			t.Errorf("expected audience client-id, got %s", gotAudience)
		}
		if identity.Subject != "1234" || identity.Email != "taro@example.com" || !identity.EmailVerified || identity.Name != "Taro" {
			t.Errorf("unexpected identity %+v", identity)
		}
	})

	t.Run("string email_verified", func(t *testing.T) {
		identity, err := identityFromPayload(&idtoken.Payload{
			Subject: "1234",
			Claims:  map[string]interface{}{"email_verified": "true"},
		})
		if err != nil || !identity.EmailVerified {
			t.Errorf("expected verified identity, got %+v err=%v", identity, err)
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		verifier := NewGoogleVerifier("client-id")
		verifier.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
			return nil, errors.New("token expired")
		}

		if _, err := verifier.Verify(context.Background(), "token"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unconfigured", func(t *testing.T) {
		if _, err := NewGoogleVerifier("").Verify(context.Background(), "token"); err == nil {
			t.Error("expected error without client id")
		}
	})
}

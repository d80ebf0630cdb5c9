package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLoginLinkStore(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store := NewLoginLinkStore(client)
	ctx := context.Background()

	t.Run("token is consumed once", func(t *testing.T) {
		if err := store.Save(ctx, "abc", "taro@example.com", time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		email, found, err := store.Consume(ctx, "abc")
		if err != nil || !found || email != "taro@example.com" {
			t.Fatalf("expected taro@example.com, got %q found=%v err=%v", email, found, err)
		}

		_, found, err = store.Consume(ctx, "abc")
		if err != nil || found {
			t.Errorf("expected second consume to miss, got found=%v err=%v", found, err)
		}
	})

	t.Run("expired token is not found", func(t *testing.T) {
		if err := store.Save(ctx, "old", "taro@example.com", time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		server.FastForward(2 * time.Minute)

		_, found, err := store.Consume(ctx, "old")
		if err != nil || found {
			t.Errorf("expected expired token to miss, got found=%v err=%v", found, err)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		_, found, err := store.Consume(ctx, "never-issued")
		if err != nil || found {
			t.Errorf("expected miss, got found=%v err=%v", found, err)
		}
	})
}

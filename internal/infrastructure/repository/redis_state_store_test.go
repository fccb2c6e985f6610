package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-app-backend/internal/domain"
)

func TestStateEncoding(t *testing.T) {
	now := time.Unix(1700000000, 0)
	in := &domain.OAuthState{
		Shop:      "shop1.myshopify.com",
		State:     "abc",
		Scopes:    []string{"read_orders"},
		ExpiresAt: now.Add(10 * time.Minute),
		CreatedAt: now,
	}

	payload, err := encodeState(in)
	require.NoError(t, err)

	out, err := decodeState(payload)
	require.NoError(t, err)
	assert.Equal(t, in.Shop, out.Shop)
	assert.Equal(t, in.State, out.State)
	assert.Equal(t, in.Scopes, out.Scopes)
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))

	_, err = decodeState([]byte("{"))
	assert.Error(t, err)
}

// Runs against a real server when TEST_REDIS_URL is set
func TestRedisStateStore_ConsumeOnce(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	client, err := NewRedisClient(ctx, redisURL)
	require.NoError(t, err)
	defer client.Close()
	store := NewRedisStateStore(client)

	state := &domain.OAuthState{
		Shop:      "shop1.myshopify.com",
		State:     "test-" + time.Now().Format("150405.000000000"),
		ExpiresAt: time.Now().Add(time.Minute),
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveState(ctx, state))

	got, err := store.ConsumeState(ctx, state.State)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "shop1.myshopify.com", got.Shop)

	got, err = store.ConsumeState(ctx, state.State)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStateStore_RejectsExpiredState(t *testing.T) {
	store := NewRedisStateStore(nil)
	err := store.SaveState(context.Background(), &domain.OAuthState{State: "x", ExpiresAt: time.Now().Add(-time.Second)})
	assert.Error(t, err)
}

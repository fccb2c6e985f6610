package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

const oauthStateKeyPrefix = "oauth:state:"

// RedisStateStore implements OAuthStateStore using Redis keys with a TTL
type RedisStateStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ ports.OAuthStateStore = (*RedisStateStore)(nil)

// NewRedisClient parses a redis:// URL and checks the connection
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStateStore creates a store with an existing Redis client
func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client, keyPrefix: oauthStateKeyPrefix}
}

func (s *RedisStateStore) key(state string) string {
	return s.keyPrefix + state
}

// SaveState stores the nonce until its ExpiresAt
func (s *RedisStateStore) SaveState(ctx context.Context, state *domain.OAuthState) error {
	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("oauth state already expired")
	}
	payload, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(state.State), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

// ConsumeState reads and deletes the nonce in one round trip so it can only be used once
func (s *RedisStateStore) ConsumeState(ctx context.Context, state string) (*domain.OAuthState, error) {
	if state == "" {
		return nil, nil
	}
	payload, err := s.client.GetDel(ctx, s.key(state)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return decodeState(payload)
}

type stateRecord struct {
	Shop      string   `json:"shop"`
	State     string   `json:"state"`
	Scopes    []string `json:"scopes"`
	ExpiresAt int64    `json:"expires_at"`
	CreatedAt int64    `json:"created_at"`
}

func encodeState(state *domain.OAuthState) ([]byte, error) {
	payload, err := json.Marshal(stateRecord{
		Shop:      state.Shop,
		State:     state.State,
		Scopes:    state.Scopes,
		ExpiresAt: state.ExpiresAt.Unix(),
		CreatedAt: state.CreatedAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode oauth state: %w", err)
	}
	return payload, nil
}

func decodeState(payload []byte) (*domain.OAuthState, error) {
	var rec stateRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode oauth state: %w", err)
	}
	return &domain.OAuthState{
		Shop:      rec.Shop,
		State:     rec.State,
		Scopes:    rec.Scopes,
		ExpiresAt: time.Unix(rec.ExpiresAt, 0),
		CreatedAt: time.Unix(rec.CreatedAt, 0),
	}, nil
}

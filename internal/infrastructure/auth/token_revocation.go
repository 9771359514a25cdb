package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevocationStore tracks revoked JWT ids per user so tokens can be
// invalidated before they expire (e.g. on logout). Revocation is monotonic:
// once a (user, jti) pair is recorded it stays revoked until the entry's TTL
// passes, which is bounded by the token's own expiry. Revoking the same pair
// twice is a no-op.
type TokenRevocationStore interface {
	// Revoke records a user's token jti as revoked. ttl should be the
	// remaining time until the token expires.
	Revoke(ctx context.Context, userID, jti string, ttl time.Duration) error

	// IsRevoked reports whether a user's token jti has been revoked.
	// Unknown users and unknown jtis are not revoked.
	IsRevoked(ctx context.Context, userID, jti string) (bool, error)

	// RevokeAllForUser invalidates every token the user holds by recording
	// the current timestamp; tokens issued before it are rejected.
	RevokeAllForUser(ctx context.Context, userID string, ttl time.Duration) error

	// IsRevokedSince reports whether tokens issued at the given time fall
	// before the user's all-session invalidation point.
	IsRevokedSince(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error)
}

// RedisTokenRevocationStore implements TokenRevocationStore using Redis.
// One key per (user, jti) pair with the token's TTL keeps the membership
// check O(1) and lets Redis expire entries on its own.
type RedisTokenRevocationStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisTokenRevocationConfig holds connection settings for the store
type RedisTokenRevocationConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTokenRevocationStore creates a Redis-backed revocation store
func NewRedisTokenRevocationStore(cfg RedisTokenRevocationConfig) (*RedisTokenRevocationStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for token revocation: %w", err)
	}

	return NewRedisTokenRevocationStoreWithClient(client), nil
}

// NewRedisTokenRevocationStoreWithClient creates a store with an existing client
func NewRedisTokenRevocationStoreWithClient(client *redis.Client) *RedisTokenRevocationStore {
	return &RedisTokenRevocationStore{
		client:    client,
		keyPrefix: "token:revoked:",
	}
}

func (s *RedisTokenRevocationStore) jtiKey(userID, jti string) string {
	return s.keyPrefix + "user:" + userID + ":jti:" + jti
}

func (s *RedisTokenRevocationStore) userKey(userID string) string {
	return s.keyPrefix + "user:" + userID + ":all"
}

// Revoke records a (user, jti) pair with the token's remaining TTL
func (s *RedisTokenRevocationStore) Revoke(ctx context.Context, userID, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired, nothing to track
		return nil
	}

	if err := s.client.Set(ctx, s.jtiKey(userID, jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsRevoked checks membership with a single EXISTS
func (s *RedisTokenRevocationStore) IsRevoked(ctx context.Context, userID, jti string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.jtiKey(userID, jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return exists > 0, nil
}

// RevokeAllForUser stores the current timestamp as the user's invalidation point
func (s *RedisTokenRevocationStore) RevokeAllForUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	return nil
}

// IsRevokedSince checks the token's issue time against the invalidation point
func (s *RedisTokenRevocationStore) IsRevokedSince(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	value, err := s.client.Get(ctx, s.userKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token revocation: %w", err)
	}

	var revokedAt int64
	if _, err := fmt.Sscanf(value, "%d", &revokedAt); err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}

	return tokenIssuedAt.Unix() <= revokedAt, nil
}

// Close closes the Redis client
func (s *RedisTokenRevocationStore) Close() error {
	return s.client.Close()
}

var _ TokenRevocationStore = (*RedisTokenRevocationStore)(nil)

// InMemoryTokenRevocationStore provides an in-memory implementation for
// tests and single-instance deployments.
type InMemoryTokenRevocationStore struct {
	mu        sync.RWMutex
	revoked   map[string]time.Time // "userID\x00jti" -> entry expiry
	userSince map[string]time.Time // userID -> invalidation time
}

// NewInMemoryTokenRevocationStore creates a new in-memory revocation store
func NewInMemoryTokenRevocationStore() *InMemoryTokenRevocationStore {
	return &InMemoryTokenRevocationStore{
		revoked:   make(map[string]time.Time),
		userSince: make(map[string]time.Time),
	}
}

func revocationKey(userID, jti string) string {
	return userID + "\x00" + jti
}

// Revoke records a (user, jti) pair; re-revoking is a no-op
func (s *InMemoryTokenRevocationStore) Revoke(_ context.Context, userID, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.revoked[revocationKey(userID, jti)]; exists {
		return nil
	}
	s.revoked[revocationKey(userID, jti)] = time.Now().Add(ttl)
	return nil
}

// IsRevoked checks the pair and drops entries past their expiry
func (s *InMemoryTokenRevocationStore) IsRevoked(_ context.Context, userID, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := revocationKey(userID, jti)
	expiry, exists := s.revoked[key]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(s.revoked, key)
		return false, nil
	}

	return true, nil
}

// RevokeAllForUser records the user's invalidation point
func (s *InMemoryTokenRevocationStore) RevokeAllForUser(_ context.Context, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userSince[userID] = time.Now()
	return nil
}

// IsRevokedSince compares with nanosecond precision so back-to-back
// revoke-then-issue sequences in tests behave deterministically
func (s *InMemoryTokenRevocationStore) IsRevokedSince(_ context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since, exists := s.userSince[userID]
	if !exists {
		return false, nil
	}

	return tokenIssuedAt.UnixNano() <= since.UnixNano(), nil
}

var _ TokenRevocationStore = (*InMemoryTokenRevocationStore)(nil)

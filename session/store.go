// Package session persists login sessions in Redis. A session is the minimal
// durable pointer: an opaque token mapped to a user id under a fixed key
// prefix, expiring on idle.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrNoSession is returned when a token maps to no live session.
var ErrNoSession = errors.New("no such session")

const keyPrefix = "session:"

// Store is the session persistence contract.
type Store interface {
	// Create opens a session for the user and returns its token.
	Create(ctx context.Context, userID int64) (string, error)
	// Get resolves a token to a user id and refreshes the idle expiry.
	// Returns ErrNoSession when the token is unknown or expired.
	Get(ctx context.Context, token string) (int64, error)
	// Destroy ends the session. Destroying an absent session is not an error.
	Destroy(ctx context.Context, token string) error
}

// RedisStore implements Store on a Redis client.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore with the given idle expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return keyPrefix + token
}

// Create opens a session for the user and returns its token.
func (s *RedisStore) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	err := s.client.Set(ctx, sessionKey(token), strconv.FormatInt(userID, 10), s.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// Get resolves a token to a user id, sliding the expiry forward on a hit.
func (s *RedisStore) Get(ctx context.Context, token string) (int64, error) {
	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, ErrNoSession
		}
		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value %q: %w", val, err)
	}

	if err := s.client.Expire(ctx, sessionKey(token), s.ttl).Err(); err != nil {
		return 0, fmt.Errorf("failed to refresh session expiry: %w", err)
	}
	return userID, nil
}

// Destroy ends the session.
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

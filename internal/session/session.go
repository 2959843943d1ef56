// Package session provides Valkey-backed API token management. A token is
// issued at login, sent back by clients in the Authorization header, and
// maps to the authenticated user's id until logout or expiry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Scheme is the Authorization header scheme clients use.
	Scheme = "Token"

	// DefaultTTL is how long an unused token lives in Valkey.
	DefaultTTL = 30 * 24 * time.Hour

	// tokenPrefix namespaces token -> user keys.
	tokenPrefix = "token:"

	// userPrefix namespaces user -> token keys, so login reuses a live token.
	userPrefix = "user_token:"

	// tokenLength is the byte length of a token (20 bytes = 40 hex chars).
	tokenLength = 20
)

// Connect creates a Valkey client and verifies the connection with a ping.
func Connect(host, port, password string) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}

// Store manages API tokens in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a token store backed by the given Valkey client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client, ttl: DefaultTTL}
}

// Issue returns the user's live token, or creates one. Either way the TTL
// is reset.
func (s *Store) Issue(ctx context.Context, userID int64) (string, error) {
	userKey := userPrefix + strconv.FormatInt(userID, 10)

	existing, err := s.client.Get(ctx, userKey).Result()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("token lookup: %w", err)
	}
	if existing != "" {
		n, err := s.client.Expire(ctx, tokenPrefix+existing, s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("token refresh: %w", err)
		}
		if n {
			s.client.Expire(ctx, userKey, s.ttl)
			return existing, nil
		}
	}

	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("token create: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, tokenPrefix+token, userID, s.ttl)
	pipe.Set(ctx, userKey, token, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("token store: %w", err)
	}
	return token, nil
}

// Lookup returns the user id behind token. ok is false for unknown or
// expired tokens.
func (s *Store) Lookup(ctx context.Context, token string) (userID int64, ok bool, err error) {
	if token == "" {
		return 0, false, nil
	}
	userID, err = s.client.Get(ctx, tokenPrefix+token).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("token get: %w", err)
	}
	return userID, true, nil
}

// Revoke deletes token and the user's reference to it.
func (s *Store) Revoke(ctx context.Context, userID int64, token string) error {
	err := s.client.Del(ctx, tokenPrefix+token, userPrefix+strconv.FormatInt(userID, 10)).Err()
	if err != nil {
		return fmt.Errorf("token revoke: %w", err)
	}
	return nil
}

// FromRequest extracts the token from an "Authorization: Token <t>" header.
// It returns "" when the header is absent or uses another scheme.
func FromRequest(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, Scheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

func generateToken() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

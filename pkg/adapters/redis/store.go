// Package redis provides Redis-backed session persistence and distributed
// locking for multi-instance deployments.
package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/vicinitylabs/vicinity/pkg/domain"
)

// Store implements ports.SessionStore using Redis. Each session lives in a
// hash whose fields are the wizard contract keys ("onboarding_step_{n}",
// "onboarding_progress"), so the stored shape is inspectable with HGETALL
// and matches what any other consumer of the session would see.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for sessions.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "vicinity:session:",
		ttl:    0, // no expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the session's snapshot. The hash is rewritten wholesale so
// that step keys removed by a reset do not linger.
func (s *Store) Save(ctx context.Context, sessionID string, sess *domain.WizardSession) error {
	kv, err := sess.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot session: %w", err)
	}

	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(sessionID))
	if len(kv) > 0 {
		flat := make([]interface{}, 0, len(kv)*2)
		for field, value := range kv {
			flat = append(flat, field, value)
		}
		pipe.HSet(ctx, s.key(sessionID), flat...)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key(sessionID), s.ttl)
		}
	}

	// Index membership (ZSET). Score = expiration time, or far future when
	// sessions do not expire, so List can prune lazily.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: sessionID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Load retrieves the session from Redis.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.WizardSession, error) {
	kv, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	if len(kv) == 0 {
		// HGETALL on a missing key returns an empty map, not redis.Nil.
		return nil, fmt.Errorf("session %q: %w", sessionID, domain.ErrSessionNotFound)
	}

	sess, err := domain.RestoreSession(sessionID, kv)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	return sess, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns active sessions from the ZSET index, pruning expired entries
// lazily.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}

// Client exposes the underlying connection, for sharing with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Package redis keeps the bot's small cross-restart state: which message
// ids were already processed on a given day and where the day's live
// scoreboard message lives. Messages themselves are never stored.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/puzzle-scoreboard/internal/config"
	"github.com/redis/go-redis/v9"
)

// Day-scoped keys expire well after the day's board stops changing.
const stateTTL = 48 * time.Hour

// StateStore provides Redis-backed bot state
type StateStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewStateStore creates a new Redis state store
func NewStateStore(cfg *config.RedisConfig, logger *slog.Logger) (*StateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &StateStore{client: client, logger: logger}, nil
}

// Close closes the Redis connection
func (s *StateStore) Close() error {
	return s.client.Close()
}

// processedKey returns the key for a day's processed-message set
func (s *StateStore) processedKey(day string) string {
	return fmt.Sprintf("scoreboard:%s:processed", day)
}

// liveKey returns the key for a day's live scoreboard message id
func (s *StateStore) liveKey(day string) string {
	return fmt.Sprintf("scoreboard:%s:live", day)
}

// IsProcessed reports whether a message was already handled today
func (s *StateStore) IsProcessed(ctx context.Context, day, messageID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.processedKey(day), messageID).Result()
	if err != nil {
		return false, fmt.Errorf("checking processed set: %w", err)
	}
	return ok, nil
}

// MarkProcessed records message ids as handled for the day
func (s *StateStore) MarkProcessed(ctx context.Context, day string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	key := s.processedKey(day)
	members := make([]interface{}, len(messageIDs))
	for i, id := range messageIDs {
		members[i] = id
	}

	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, stateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("marking processed: %w", err)
	}
	return nil
}

// LiveMessageID returns the day's live scoreboard message id, empty when
// none was posted yet.
func (s *StateStore) LiveMessageID(ctx context.Context, day string) (string, error) {
	id, err := s.client.Get(ctx, s.liveKey(day)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting live message id: %w", err)
	}
	return id, nil
}

// SetLiveMessageID records the day's live scoreboard message id
func (s *StateStore) SetLiveMessageID(ctx context.Context, day, messageID string) error {
	if err := s.client.Set(ctx, s.liveKey(day), messageID, stateTTL).Err(); err != nil {
		return fmt.Errorf("setting live message id: %w", err)
	}
	return nil
}

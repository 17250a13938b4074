// Package history keeps the rolling per-session prompt history in Redis.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"xpilot-copilot/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "copilot:history:"
	DefaultSize = 5
	DefaultTTL  = time.Hour
)

type Options struct {
	Size int
	TTL  time.Duration
}

type Store struct {
	rdb    redis.Cmdable
	size   int
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(rdb redis.Cmdable, opts Options, log logger.Logger) *Store {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Store{
		rdb:    rdb,
		size:   opts.Size,
		ttl:    opts.TTL,
		logger: log.With(map[string]interface{}{"component": "chat-history"}),
	}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

// Append records a prompt, keeps the most recent entries and refreshes the TTL.
// A blank session or prompt is ignored.
func (s *Store) Append(ctx context.Context, sessionID, prompt string) error {
	sessionID = strings.TrimSpace(sessionID)
	prompt = strings.TrimSpace(prompt)
	if sessionID == "" || prompt == "" {
		return nil
	}

	k := key(sessionID)
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, k, prompt)
		pipe.LTrim(ctx, k, int64(-s.size), -1)
		pipe.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	s.logger.Debug("History appended", map[string]interface{}{"sessionId": sessionID})
	return nil
}

// Recent returns the stored prompts, oldest first.
func (s *Store) Recent(ctx context.Context, sessionID string) ([]string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}

	items, err := s.rdb.LRange(ctx, key(sessionID), int64(-s.size), -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return items, nil
}

// Context renders the history as a numbered list for the chat preamble.
func (s *Store) Context(ctx context.Context, sessionID string) (string, error) {
	items, err := s.Recent(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return Render(items), nil
}

func Render(items []string) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
	}
	return strings.Join(lines, "\n")
}

// Clear drops a session's history.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, key(strings.TrimSpace(sessionID))).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

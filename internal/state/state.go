package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"degreeplan/advisor/internal/domain"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("request not found")

// Status is the last known state of an advising request.
type Status struct {
	ID        string              `json:"id"`
	Status    domain.ReportStatus `json:"status"`
	Error     string              `json:"error,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type StatusStore interface {
	SetStatus(ctx context.Context, id string, status domain.ReportStatus, errMsg string) error
	GetStatus(ctx context.Context, id string) (*Status, error)
}

type redisStatusStore struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

func NewRedisStatusStore(redisClient *redis.Client, ttl time.Duration) StatusStore {
	return &redisStatusStore{
		redisClient: redisClient,
		keyPrefix:   "advisor:request:",
		ttl:         ttl,
	}
}

func (s *redisStatusStore) SetStatus(ctx context.Context, id string, status domain.ReportStatus, errMsg string) error {
	key := s.keyPrefix + id
	pipe := s.redisClient.TxPipeline()
	pipe.HSet(ctx, key,
		"status", string(status),
		"error", errMsg,
		"updated_at", time.Now().UTC().Format(time.RFC3339Nano),
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set status for request %s: %w", id, err)
	}
	return nil
}

func (s *redisStatusStore) GetStatus(ctx context.Context, id string) (*Status, error) {
	vals, err := s.redisClient.HGetAll(ctx, s.keyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get status for request %s: %w", id, err)
	}
	if len(vals) == 0 {
		return nil, ErrNotFound
	}

	st := &Status{
		ID:     id,
		Status: domain.ReportStatus(vals["status"]),
		Error:  vals["error"],
	}
	if ts, err := time.Parse(time.RFC3339Nano, vals["updated_at"]); err == nil {
		st.UpdatedAt = ts
	}
	return st, nil
}

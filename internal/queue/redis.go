package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"degreeplan/advisor/internal/config"
	"degreeplan/advisor/internal/domain/task"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const StreamPrefix = "advisor:stream:"

// Task types with a stream and consumer group of their own.
var TaskTypes = []string{task.AdviseTaskType}

type Queue interface {
	AddTask(ctx context.Context, task task.Task) (string, error) // Returns message ID
	GetTask(ctx context.Context, group, consumer, stream string) (*redis.XMessage, error)
	AckTask(ctx context.Context, stream, group, msgID string) error
	AutoClaim(ctx context.Context, group, consumer, stream string, minIdleTime time.Duration) ([]redis.XMessage, error)
	EnsureStreamsExist(ctx context.Context) error
}

// Stream is the stream name carrying tasks of taskType.
func Stream(taskType string) string {
	return StreamPrefix + taskType
}

type RedisQueue struct {
	redisClient *redis.Client
	groupName   string
}

func NewRedisQueue(ctx context.Context, redisClient *redis.Client, cfg config.RedisConfig) (*RedisQueue, error) {
	q := &RedisQueue{
		redisClient: redisClient,
		groupName:   cfg.ConsumerGroup,
	}

	// Workers read with XREADGROUP, so groups must exist before they start
	if err := q.EnsureStreamsExist(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure streams exist: %w", err)
	}

	return q, nil
}

func (q *RedisQueue) createGroup(ctx context.Context, stream, group string) error {
	err := q.redisClient.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		log.Debugf("Group %s already exists for stream %s", group, stream)
		return nil
	}
	return err
}

func (q *RedisQueue) AddTask(ctx context.Context, t task.Task) (string, error) {
	taskType := t.TaskType()
	streamName := Stream(taskType)

	values, err := task.Values(t)
	if err != nil {
		return "", fmt.Errorf("failed to serialize task: %w", err)
	}

	messageID, err := q.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add task to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Added task %s to stream %s with message ID: %s", taskType, streamName, messageID)
	return messageID, nil
}

// GetTask blocks up to five seconds for the next undelivered message.
// A nil message with a nil error means the wait timed out.
func (q *RedisQueue) GetTask(ctx context.Context, group, consumer, stream string) (*redis.XMessage, error) {
	result, err := q.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    1,
		Block:    5 * time.Second,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from Redis stream %s: %w", stream, err)
	}

	if len(result) == 0 || len(result[0].Messages) == 0 {
		return nil, nil
	}

	return &result[0].Messages[0], nil
}

func (q *RedisQueue) AckTask(ctx context.Context, stream, group, msgID string) error {
	return q.redisClient.XAck(ctx, stream, group, msgID).Err()
}

// AutoClaim takes over one message left pending by a consumer that has been
// idle for at least minIdleTime.
func (q *RedisQueue) AutoClaim(ctx context.Context, group, consumer, stream string, minIdleTime time.Duration) ([]redis.XMessage, error) {
	result, _, err := q.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdleTime,
		Start:    "0-0",
		Count:    1,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to claim messages from Redis stream %s: %w", stream, err)
	}

	return result, nil
}

// EnsureStreamsExist creates every task stream and its consumer group.
func (q *RedisQueue) EnsureStreamsExist(ctx context.Context) error {
	for _, taskType := range TaskTypes {
		streamName := Stream(taskType)
		if err := q.createGroup(ctx, streamName, q.groupName); err != nil {
			return fmt.Errorf("failed to create consumer group for %s: %w", taskType, err)
		}
		log.Infof("✅ Stream %s and consumer group %s ready", streamName, q.groupName)
	}
	return nil
}

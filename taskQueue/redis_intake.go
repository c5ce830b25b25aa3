package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"renditionmaker/logger"
	"renditionmaker/models"
)

const popTimeout = 5 * time.Second

// popper is the part of the redis client the intake needs.
type popper interface {
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// RedisIntake pulls JSON work items pushed by a workflow engine onto a
// Redis list and hands them to submit.
type RedisIntake struct {
	client popper
	queue  string
}

func NewRedisIntake(client *redis.Client, queue string) *RedisIntake {
	return &RedisIntake{client: client, queue: queue}
}

// Run blocks until ctx is done.
func (r *RedisIntake) Run(ctx context.Context, submit func(models.WorkItem) error) {
	logger.Infof("Redis intake listening on %s", r.queue)
	for {
		if ctx.Err() != nil {
			logger.Info("Redis intake stopped")
			return
		}

		res, err := r.client.BRPop(ctx, popTimeout, r.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			logger.Errorf("Redis intake pop failed: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		// BRPOP replies with [key, value]
		if len(res) != 2 {
			logger.Warnf("Unexpected BRPOP reply of %d elements", len(res))
			continue
		}

		item, err := decodeWorkItem(res[1])
		if err != nil {
			logger.Errorf("Dropping malformed work item from %s: %v", r.queue, err)
			continue
		}
		if err := submit(item); err != nil {
			logger.Errorf("Failed to submit work item from %s: %v", r.queue, err)
		}
	}
}

func decodeWorkItem(raw string) (models.WorkItem, error) {
	var item models.WorkItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return models.WorkItem{}, err
	}
	if item.PayloadPath == "" {
		return models.WorkItem{}, errors.New("payload path required")
	}
	return item, nil
}

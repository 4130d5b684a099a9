package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/taskore/taskore/core"
)

type Config struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// RedisQueue submits ready jobs onto a redis list, one list per queue name.
// Workers pop from the other end, so the list order is the dispatch order.
type RedisQueue struct {
	client *redis.Client
	name   string
	key    string
}

func NewRedis(ctx context.Context, cfg *Config, name string) (*RedisQueue, error) {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisQueue{
		client: client,
		name:   name,
		key:    cfg.Prefix + "queue:" + name,
	}, nil
}

// NewRedisQueueMap builds one redis-backed queue per priority label over a
// shared connection config.
func NewRedisQueueMap(ctx context.Context, cfg *Config, priorities ...core.Priority) (core.QueueMap, error) {
	queues := make(core.QueueMap, len(priorities))
	for _, p := range priorities {
		q, err := NewRedis(ctx, cfg, string(p))
		if err != nil {
			return nil, err
		}
		queues[p] = q
	}
	return queues, nil
}

func (q *RedisQueue) Name() string {
	return q.name
}

func (q *RedisQueue) Enqueue(ctx context.Context, job *core.Job) error {
	payload, err := job.Serialize()
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

// Length reports how many jobs are waiting on the queue.
func (q *RedisQueue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

func (q *RedisQueue) HealthCheck(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

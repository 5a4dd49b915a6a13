package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
)

// RedisQueue pushes jobs onto a redis list; consumers pop from the other end.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

// Enqueue LPUSHes a welcome job for to. It returns once redis has accepted the job.
func (q *RedisQueue) Enqueue(ctx context.Context, to string, u *entity.User) error {
	body, err := NewWelcomeJob(to, u).encode()
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, body).Err(); err != nil {
		return fmt.Errorf("push to %s: %w", q.key, err)
	}
	return nil
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

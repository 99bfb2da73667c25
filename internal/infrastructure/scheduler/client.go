package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// importTimeout tope de una importación programada.
const importTimeout = 30 * time.Minute

// Client encola importaciones.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(redisURL, queue string) (*Client, error) {
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueOrDefault(queue),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueImport encola una importación y devuelve el id de la tarea.
func (c *Client) EnqueueImport(ctx context.Context, payload ImportPayload) (string, error) {
	task, err := NewImportTask(payload)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, importOptions(c.queue)...)
	if err != nil {
		return "", fmt.Errorf("scheduler: encolar: %w", err)
	}
	return info.ID, nil
}

func importOptions(queue string) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(queue),
		asynq.Timeout(importTimeout),
		asynq.MaxRetry(3),
	}
}

func queueOrDefault(queue string) string {
	if queue == "" {
		return "default"
	}
	return queue
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("scheduler: REDIS_URL no configurada")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

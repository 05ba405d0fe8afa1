package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"hedera-agent-kit/pkg/logger"
)

// RedisConfig 描述 Redis 队列的连接参数。
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	Queue     string
	BlockWait time.Duration
}

// RedisOutbox 使用 Redis list 存放签名请求（LPUSH 投递，BRPOP 消费）。
type RedisOutbox struct {
	client *redis.Client
	queue  string
	wait   time.Duration
}

// NewRedisOutbox 创建 Redis 队列实例。
func NewRedisOutbox(ctx context.Context, cfg RedisConfig) (*RedisOutbox, error) {
	if cfg.Address == "" {
		return nil, errors.New("Redis address 不能为空")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return NewRedisOutboxFromClient(client, cfg.Queue, cfg.BlockWait), nil
}

// NewRedisOutboxFromClient 复用已有的 Redis 客户端。
func NewRedisOutboxFromClient(client *redis.Client, queue string, wait time.Duration) *RedisOutbox {
	if queue == "" {
		queue = "agentkit:signing"
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &RedisOutbox{client: client, queue: queue, wait: wait}
}

// Publish 将签名请求以 JSON 形式写入 Redis。
func (q *RedisOutbox) Publish(ctx context.Context, req SigningRequest) error {
	body, err := encode(req)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.queue, body).Err(); err != nil {
		return fmt.Errorf("Redis 投递签名请求失败: %w", err)
	}
	return nil
}

// Consume 通过 BRPOP 从 Redis 获取签名请求。
func (q *RedisOutbox) Consume(ctx context.Context, workerCount int, handler Handler) error {
	if workerCount <= 0 {
		workerCount = 1
	}
	errCh := make(chan error, workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				default:
				}
				values, err := q.client.BRPop(ctx, q.wait, q.queue).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
						errCh <- err
						return
					}
					if errors.Is(err, redis.Nil) {
						continue
					}
					errCh <- fmt.Errorf("Redis 读取签名请求失败: %w", err)
					return
				}
				if len(values) != 2 {
					continue
				}
				req, err := decode([]byte(values[1]))
				if err != nil {
					// 无法解析的消息直接丢弃，避免反复投递。
					logger.Named("outbox").Warn("丢弃无法解析的签名请求", slog.String("error", err.Error()))
					continue
				}
				if handlerErr := handler(ctx, req); handlerErr != nil {
					_ = q.client.RPush(ctx, q.queue, values[1]).Err()
				}
			}
		}()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Close 关闭 Redis 连接。
func (q *RedisOutbox) Close() error {
	if q == nil || q.client == nil {
		return nil
	}
	return q.client.Close()
}

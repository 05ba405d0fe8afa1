package outbox

import (
	"context"
	"errors"
	"sync"
)

// MemoryOutbox 使用 channel 模拟投递队列，主要用于测试与单机部署。
type MemoryOutbox struct {
	ch     chan SigningRequest
	mu     sync.Mutex
	closed bool
}

// NewMemoryOutbox 创建一个内存队列。
func NewMemoryOutbox(size int) *MemoryOutbox {
	if size <= 0 {
		size = 64
	}
	return &MemoryOutbox{ch: make(chan SigningRequest, size)}
}

// Publish 将签名请求投递到队列。
func (q *MemoryOutbox) Publish(ctx context.Context, req SigningRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.New("outbox 已关闭")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- req:
		return nil
	}
}

// Consume 启动指定数量的工作协程消费签名请求。
func (q *MemoryOutbox) Consume(ctx context.Context, workerCount int, handler Handler) error {
	if workerCount <= 0 {
		workerCount = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case req, ok := <-q.ch:
					if !ok {
						return
					}
					_ = handler(ctx, req)
				}
			}
		}()
	}
	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

// Len 返回尚未被消费的请求数量。
func (q *MemoryOutbox) Len() int { return len(q.ch) }

// Close 关闭内存队列。
func (q *MemoryOutbox) Close() error {
	q.mu.Lock()
	if !q.closed {
		close(q.ch)
		q.closed = true
	}
	q.mu.Unlock()
	return nil
}

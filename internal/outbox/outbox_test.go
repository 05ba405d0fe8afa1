package outbox

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"
)

func TestMemoryOutboxDeliversRequests(t *testing.T) {
	q := NewMemoryOutbox(4)
	req := NewSigningRequest("transfer_hbar_tool", "crypto_transfer", "0.0.5", "0.0.5@1.2", "testnet", []byte{1, 2, 3})
	if req.ID == "" || req.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", req)
	}
	if err := q.Publish(context.Background(), req); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var (
		mu  sync.Mutex
		got []SigningRequest
	)
	go func() {
		_ = q.Consume(ctx, 2, func(_ context.Context, r SigningRequest) error {
			mu.Lock()
			got = append(got, r)
			mu.Unlock()
			cancel()
			return nil
		})
	}()
	<-ctx.Done()
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].ID != req.ID || got[0].BytesBase64() != "AQID" {
		t.Fatalf("unexpected delivery %+v", got)
	}
}

func TestMemoryOutboxRejectsAfterClose(t *testing.T) {
	q := NewMemoryOutbox(1)
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Publish(context.Background(), SigningRequest{}); err == nil {
		t.Fatalf("expected publish after close to fail")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	req := NewSigningRequest("m", "op", "0.0.1", "tx", "testnet", []byte("payload"))
	body, err := encode(req)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := decode(body)
	if err != nil || back.ID != req.ID || string(back.Bytes) != "payload" {
		t.Fatalf("unexpected decode %+v (%v)", back, err)
	}
	if _, err := decode([]byte("{")); err == nil {
		t.Fatalf("expected malformed body to fail")
	}
}

func TestRedisOutbox(t *testing.T) {
	addr := os.Getenv("AGENTKIT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AGENTKIT_TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q, err := NewRedisOutbox(ctx, RedisConfig{Address: addr, Queue: "agentkit:test:" + time.Now().Format("150405.000"), BlockWait: time.Second})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer q.Close()

	req := NewSigningRequest("m", "op", "0.0.1", "tx", "testnet", []byte("x"))
	if err := q.Publish(ctx, req); err != nil {
		t.Fatalf("publish: %v", err)
	}
	consumeCtx, stop := context.WithCancel(ctx)
	var got SigningRequest
	_ = q.Consume(consumeCtx, 1, func(_ context.Context, r SigningRequest) error {
		got = r
		stop()
		return nil
	})
	if got.ID != req.ID {
		t.Fatalf("expected request %s, got %+v", req.ID, got)
	}
}

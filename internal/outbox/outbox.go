// Package outbox 把 returnBytes 模式下冻结好的交易投递给外部签名方。
package outbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SigningRequest 描述一笔等待用户签名的交易。
type SigningRequest struct {
	ID            string    `json:"id"`
	Method        string    `json:"method"`
	Operation     string    `json:"operation"`
	AccountID     string    `json:"accountId"`
	TransactionID string    `json:"transactionId"`
	Network       string    `json:"network"`
	Bytes         []byte    `json:"bytes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewSigningRequest 生成带 ID 与时间戳的签名请求。
func NewSigningRequest(method, operation, accountID, transactionID, network string, data []byte) SigningRequest {
	return SigningRequest{
		ID:            uuid.NewString(),
		Method:        method,
		Operation:     operation,
		AccountID:     accountID,
		TransactionID: transactionID,
		Network:       network,
		Bytes:         data,
		CreatedAt:     time.Now().UTC(),
	}
}

// BytesBase64 返回交易字节的 base64 形式，便于日志与前端展示。
func (r SigningRequest) BytesBase64() string {
	return base64.StdEncoding.EncodeToString(r.Bytes)
}

// Handler 处理队列中取出的签名请求。
type Handler func(ctx context.Context, req SigningRequest) error

// Publisher 负责投递签名请求。
type Publisher interface {
	Publish(ctx context.Context, req SigningRequest) error
	Close() error
}

// Consumer 负责消费签名请求。
type Consumer interface {
	Consume(ctx context.Context, workerCount int, handler Handler) error
	Close() error
}

// Outbox 同时具备投递与消费能力。
type Outbox interface {
	Publisher
	Consumer
}

func encode(req SigningRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("序列化签名请求失败: %w", err)
	}
	return body, nil
}

func decode(body []byte) (SigningRequest, error) {
	var req SigningRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return SigningRequest{}, fmt.Errorf("解析签名请求失败: %w", err)
	}
	return req, nil
}

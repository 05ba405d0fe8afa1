package mysql

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"hedera-agent-kit/pkg/toolkit"
)

// memoryLimit 是内存仓库保留的最大记录数。
const memoryLimit = 512

// InvocationRecord 表示一次工具调用的落库结构。
type InvocationRecord struct {
	ID         string `json:"id"`
	Method     string `json:"method"`
	Mode       string `json:"mode"`
	AccountID  string `json:"accountId"`
	Network    string `json:"network"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	StartedAt  int64  `json:"startedAt"`
	DurationMS int64  `json:"durationMs"`
}

// RecordFromInvocation 把 toolkit 调用转换为落库结构，并分配 ID。
func RecordFromInvocation(inv toolkit.Invocation) InvocationRecord {
	return InvocationRecord{
		ID:         uuid.NewString(),
		Method:     inv.Method,
		Mode:       string(inv.Mode),
		AccountID:  inv.AccountID,
		Network:    inv.Network,
		Success:    inv.Success,
		Error:      inv.Error,
		StartedAt:  inv.StartedAt.UnixMilli(),
		DurationMS: inv.Duration.Milliseconds(),
	}
}

// InvocationRepository 抽象调用记录的持久化接口。
type InvocationRepository interface {
	Save(ctx context.Context, record InvocationRecord) error
	ListLatest(ctx context.Context, limit int) ([]InvocationRecord, error)
}

// Recorder 把 InvocationRepository 适配为 toolkit.Recorder。
type Recorder struct {
	Repo InvocationRepository
}

// RecordInvocation 实现 toolkit.Recorder。
func (r Recorder) RecordInvocation(ctx context.Context, inv toolkit.Invocation) error {
	if r.Repo == nil {
		return nil
	}
	return r.Repo.Save(ctx, RecordFromInvocation(inv))
}

var _ toolkit.Recorder = Recorder{}

// MemoryInvocationRepository 使用本地 JSON 行文件保存记录，适合单机开发。
type MemoryInvocationRepository struct {
	mu       sync.RWMutex
	dataFile string
	records  []InvocationRecord
}

// NewMemoryInvocationRepository 创建文件仓库，并恢复已有记录。
func NewMemoryInvocationRepository(dataDir string) (*MemoryInvocationRepository, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	repo := &MemoryInvocationRepository{dataFile: filepath.Join(dataDir, "invocations.log")}
	if err := repo.loadFromDisk(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Save 以追加写的方式记录调用。
func (m *MemoryInvocationRepository) Save(_ context.Context, record InvocationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := os.OpenFile(m.dataFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("打开调用日志失败: %w", err)
	}
	defer file.Close()

	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化调用记录失败: %w", err)
	}
	if _, err := file.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("写入调用日志失败: %w", err)
	}

	m.records = append([]InvocationRecord{record}, m.records...)
	if len(m.records) > memoryLimit {
		m.records = m.records[:memoryLimit]
	}
	return nil
}

// ListLatest 返回最近的调用记录，按时间倒序排列。
func (m *MemoryInvocationRepository) ListLatest(_ context.Context, limit int) ([]InvocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}
	results := make([]InvocationRecord, limit)
	copy(results, m.records[:limit])
	return results, nil
}

func (m *MemoryInvocationRepository) loadFromDisk() error {
	file, err := os.OpenFile(m.dataFile, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("读取调用日志失败: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var restored []InvocationRecord
	for scanner.Scan() {
		var record InvocationRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			continue
		}
		restored = append([]InvocationRecord{record}, restored...)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("解析调用日志失败: %w", err)
	}
	if len(restored) > memoryLimit {
		restored = restored[:memoryLimit]
	}
	m.records = restored
	return nil
}

// SQLInvocationRepository 使用 MySQL 保存调用记录。
type SQLInvocationRepository struct {
	db *sql.DB
}

// NewSQLInvocationRepository 创建连接池并执行内置迁移。
func NewSQLInvocationRepository(ctx context.Context, cfg Config) (*SQLInvocationRepository, error) {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	repo := &SQLInvocationRepository{db: db}
	if err := repo.runMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

const insertInvocationSQL = `INSERT INTO tool_invocations
    (id, method, mode, account_id, network, success, error, started_at, duration_ms)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const listInvocationsSQL = `SELECT id, method, mode, account_id, network, success, error, started_at, duration_ms
    FROM tool_invocations ORDER BY started_at DESC, id DESC LIMIT ?`

// Save 将调用记录写入 MySQL。
func (s *SQLInvocationRepository) Save(ctx context.Context, record InvocationRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.StartedAt == 0 {
		record.StartedAt = time.Now().UnixMilli()
	}
	if _, err := s.db.ExecContext(ctx, insertInvocationSQL,
		record.ID,
		record.Method,
		record.Mode,
		record.AccountID,
		record.Network,
		record.Success,
		record.Error,
		record.StartedAt,
		record.DurationMS,
	); err != nil {
		return fmt.Errorf("写入 MySQL 失败: %w", err)
	}
	return nil
}

// ListLatest 查询最近的若干条调用记录。
func (s *SQLInvocationRepository) ListLatest(ctx context.Context, limit int) ([]InvocationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, listInvocationsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("查询调用记录失败: %w", err)
	}
	defer rows.Close()

	var records []InvocationRecord
	for rows.Next() {
		var record InvocationRecord
		if err := rows.Scan(&record.ID, &record.Method, &record.Mode, &record.AccountID, &record.Network, &record.Success, &record.Error, &record.StartedAt, &record.DurationMS); err != nil {
			return nil, fmt.Errorf("解析调用记录失败: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历调用记录失败: %w", err)
	}
	return records, nil
}

// Close 关闭底层数据库连接。
func (s *SQLInvocationRepository) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

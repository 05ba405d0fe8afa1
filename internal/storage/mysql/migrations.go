package mysql

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"hedera-agent-kit/deploy/migrations"
	"hedera-agent-kit/pkg/logger"
)

// invocationMigrations 是调用审计表的迁移脚本，文件名形如 0001_xxx.sql。
var invocationMigrations fs.FS = migrations.Files

const (
	createMigrationLedgerSQL = `CREATE TABLE IF NOT EXISTS agentkit_migrations (
        version VARCHAR(32) NOT NULL PRIMARY KEY,
        checksum CHAR(64) NOT NULL,
        applied_at BIGINT NOT NULL
)`
	listMigrationLedgerSQL   = `SELECT version, checksum FROM agentkit_migrations`
	recordMigrationLedgerSQL = `INSERT INTO agentkit_migrations (version, checksum, applied_at) VALUES (?, ?, ?)`
)

// schemaStep 是一个迁移文件：版本号、内容摘要与拆分后的语句。
type schemaStep struct {
	version    string
	file       string
	checksum   string
	statements []string
}

// runMigrations 按版本执行尚未执行的迁移；已执行的迁移若内容被改动则拒绝启动。
func (s *SQLInvocationRepository) runMigrations(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createMigrationLedgerSQL); err != nil {
		return fmt.Errorf("创建迁移记录表失败: %w", err)
	}
	applied, err := s.appliedChecksums(ctx)
	if err != nil {
		return err
	}
	steps, err := readSchemaSteps(invocationMigrations)
	if err != nil {
		return err
	}

	log := logger.Named("invocation-store")
	for _, step := range steps {
		if sum, ok := applied[step.version]; ok {
			if sum != step.checksum {
				return fmt.Errorf("迁移 %s 已执行但文件 %s 内容已改变", step.version, step.file)
			}
			continue
		}
		if err := s.applyStep(ctx, step); err != nil {
			return err
		}
		log.Info("调用审计表迁移完成", slog.String("version", step.version), slog.String("file", step.file))
	}
	return nil
}

func (s *SQLInvocationRepository) appliedChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, listMigrationLedgerSQL)
	if err != nil {
		return nil, fmt.Errorf("查询迁移记录失败: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var version, checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, fmt.Errorf("解析迁移记录失败: %w", err)
		}
		applied[version] = checksum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历迁移记录失败: %w", err)
	}
	return applied, nil
}

// applyStep 在同一事务中执行迁移语句并写入迁移记录。
func (s *SQLInvocationRepository) applyStep(ctx context.Context, step schemaStep) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启迁移事务失败: %w", err)
	}
	for _, stmt := range step.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("执行迁移 %s 失败: %w", step.file, err)
		}
	}
	if _, err := tx.ExecContext(ctx, recordMigrationLedgerSQL, step.version, step.checksum, time.Now().UnixMilli()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("写入迁移记录 %s 失败: %w", step.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交迁移 %s 失败: %w", step.version, err)
	}
	return nil
}

// readSchemaSteps 读取 .sql 文件并按版本排序；同一版本出现两次视为错误。
func readSchemaSteps(files fs.FS) ([]schemaStep, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("读取迁移目录失败: %w", err)
	}
	seen := make(map[string]string)
	var steps []schemaStep
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		content, err := fs.ReadFile(files, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("读取迁移文件 %s 失败: %w", entry.Name(), err)
		}
		statements := splitSQLStatements(string(content))
		if len(statements) == 0 {
			continue
		}
		version := migrationVersion(entry.Name())
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("迁移版本 %s 重复: %s 与 %s", version, other, entry.Name())
		}
		seen[version] = entry.Name()
		digest := sha256.Sum256(content)
		steps = append(steps, schemaStep{
			version:    version,
			file:       entry.Name(),
			checksum:   hex.EncodeToString(digest[:]),
			statements: statements,
		})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	return steps, nil
}

func splitSQLStatements(content string) []string {
	var statements []string
	for _, stmt := range strings.Split(content, ";") {
		if trimmed := strings.TrimSpace(stmt); trimmed != "" {
			statements = append(statements, trimmed)
		}
	}
	return statements
}

// migrationVersion 取文件名第一个下划线之前的部分，没有下划线时去掉扩展名。
func migrationVersion(name string) string {
	if idx := strings.IndexByte(name, '_'); idx > 0 {
		return name[:idx]
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

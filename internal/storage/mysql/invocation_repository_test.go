package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"hedera-agent-kit/pkg/tool"
	"hedera-agent-kit/pkg/toolkit"
)

func TestMemoryInvocationRepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo, err := NewMemoryInvocationRepository(dir)
	if err != nil {
		t.Fatalf("failed to create memory repo: %v", err)
	}

	ctx := context.Background()
	rec := Recorder{Repo: repo}
	for _, method := range []string{"transfer_hbar_tool", "create_topic_tool"} {
		if err := rec.RecordInvocation(ctx, toolkit.Invocation{
			Method:    method,
			Mode:      tool.ModeAutonomous,
			Success:   true,
			StartedAt: time.UnixMilli(1_700_000_000_000),
			Duration:  1500 * time.Millisecond,
		}); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	list, err := repo.ListLatest(ctx, 10)
	if err != nil {
		t.Fatalf("list latest failed: %v", err)
	}
	if len(list) != 2 || list[0].Method != "create_topic_tool" {
		t.Fatalf("unexpected list result: %+v", list)
	}
	if list[0].ID == "" || list[0].DurationMS != 1500 || list[0].Mode != "autonomous" {
		t.Fatalf("unexpected record: %+v", list[0])
	}

	reopened, err := NewMemoryInvocationRepository(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	restored, _ := reopened.ListLatest(ctx, 1)
	if len(restored) != 1 || restored[0].Method != "create_topic_tool" {
		t.Fatalf("records not restored from disk: %+v", restored)
	}
}

func TestSQLInvocationRepositorySave(t *testing.T) {
	t.Parallel()

	db, driver := newMockDB(t, []mockOperation{
		execOp(insertInvocationSQL, mockResult{rowsAffected: 1}),
	})
	defer driver.assertConsumed(t)
	defer db.Close()

	repo := &SQLInvocationRepository{db: db}
	if err := repo.Save(context.Background(), InvocationRecord{Method: "transfer_hbar_tool", Mode: "autonomous", Success: true}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
}

func TestSQLInvocationRepositoryListLatest(t *testing.T) {
	t.Parallel()

	rows := mockRowsData{
		columns: []string{"id", "method", "mode", "account_id", "network", "success", "error", "started_at", "duration_ms"},
		values: [][]driver.Value{
			{"b", "create_topic_tool", "returnBytes", "0.0.1001", "testnet", true, "", int64(20), int64(5)},
			{"a", "transfer_hbar_tool", "autonomous", "", "testnet", false, "boom", int64(10), int64(7)},
		},
	}
	db, driver := newMockDB(t, []mockOperation{queryOp(listInvocationsSQL, rows)})
	defer driver.assertConsumed(t)
	defer db.Close()

	repo := &SQLInvocationRepository{db: db}
	list, err := repo.ListLatest(context.Background(), 2)
	if err != nil {
		t.Fatalf("list latest failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "b" || list[1].Success || list[1].Error != "boom" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestSQLInvocationRepositoryRunMigrations(t *testing.T) {
	t.Parallel()

	ops := []mockOperation{
		execOp(createMigrationLedgerSQL, mockResult{}),
		queryOp(listMigrationLedgerSQL, mockRowsData{columns: []string{"version", "checksum"}}),
		beginOp(),
		execOp(firstStep(t).statements[0], mockResult{rowsAffected: 0}),
		execOp(recordMigrationLedgerSQL, mockResult{rowsAffected: 1}),
		commitOp(),
	}
	db, driver := newMockDB(t, ops)
	defer driver.assertConsumed(t)
	defer db.Close()

	repo := &SQLInvocationRepository{db: db}
	if err := repo.runMigrations(context.Background()); err != nil {
		t.Fatalf("run migrations failed: %v", err)
	}
}

func TestSQLInvocationRepositorySkipsAppliedMigrations(t *testing.T) {
	t.Parallel()

	step := firstStep(t)
	ops := []mockOperation{
		execOp(createMigrationLedgerSQL, mockResult{}),
		queryOp(listMigrationLedgerSQL, mockRowsData{columns: []string{"version", "checksum"}, values: [][]driver.Value{{step.version, step.checksum}}}),
	}
	db, driver := newMockDB(t, ops)
	defer driver.assertConsumed(t)
	defer db.Close()

	if err := (&SQLInvocationRepository{db: db}).runMigrations(context.Background()); err != nil {
		t.Fatalf("run migrations failed: %v", err)
	}
}

func TestSQLInvocationRepositoryRejectsEditedMigration(t *testing.T) {
	t.Parallel()

	ops := []mockOperation{
		execOp(createMigrationLedgerSQL, mockResult{}),
		queryOp(listMigrationLedgerSQL, mockRowsData{columns: []string{"version", "checksum"}, values: [][]driver.Value{{"0001", strings.Repeat("0", 64)}}}),
	}
	db, driver := newMockDB(t, ops)
	defer driver.assertConsumed(t)
	defer db.Close()

	err := (&SQLInvocationRepository{db: db}).runMigrations(context.Background())
	if err == nil || !strings.Contains(err.Error(), "0001") {
		t.Fatalf("expected edited migration to be rejected, got %v", err)
	}
}

func TestReadSchemaSteps(t *testing.T) {
	files := fstest.MapFS{
		"0002_add_index.sql": {Data: []byte("CREATE INDEX a ON t (a);")},
		"0001_create.sql":    {Data: []byte("CREATE TABLE t (a INT); ")},
		"README.md":          {Data: []byte("not sql")},
		"0003_empty.sql":     {Data: []byte("  ;  ")},
	}
	steps, err := readSchemaSteps(files)
	if err != nil {
		t.Fatalf("read steps: %v", err)
	}
	if len(steps) != 2 || steps[0].version != "0001" || steps[1].version != "0002" || len(steps[0].checksum) != 64 {
		t.Fatalf("unexpected steps: %+v", steps)
	}

	files["0001_again.sql"] = &fstest.MapFile{Data: []byte("SELECT 1;")}
	if _, err := readSchemaSteps(files); err == nil {
		t.Fatalf("expected duplicate version to fail")
	}
}

func firstStep(t *testing.T) schemaStep {
	t.Helper()
	steps, err := readSchemaSteps(invocationMigrations)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(steps) == 0 || len(steps[0].statements) == 0 {
		t.Fatalf("no embedded migration statements")
	}
	return steps[0]
}

type operationType int

const (
	opExec operationType = iota
	opQuery
	opBegin
	opCommit
	opRollback
)

type mockOperation struct {
	typ    operationType
	query  string
	result mockResult
	rows   mockRowsData
	err    error
}

type mockResult struct {
	lastInsertID int64
	rowsAffected int64
}

func (r mockResult) LastInsertId() (int64, error) { return r.lastInsertID, nil }
func (r mockResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

type mockRowsData struct {
	columns []string
	values  [][]driver.Value
}

type queueDriver struct {
	ops []mockOperation
	idx int32
}

var driverSeq atomic.Int32

func newMockDB(t *testing.T, ops []mockOperation) (*sql.DB, *queueDriver) {
	t.Helper()

	drv := &queueDriver{ops: ops}
	name := fmt.Sprintf("mock-mysql-%d", driverSeq.Add(1))
	sql.Register(name, drv)

	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("open mock db failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, drv
}

func execOp(query string, result mockResult) mockOperation {
	return mockOperation{typ: opExec, query: query, result: result}
}

func queryOp(query string, rows mockRowsData) mockOperation {
	return mockOperation{typ: opQuery, query: query, rows: rows}
}

func beginOp() mockOperation { return mockOperation{typ: opBegin} }

func commitOp() mockOperation { return mockOperation{typ: opCommit} }

func (d *queueDriver) assertConsumed(t *testing.T) {
	t.Helper()

	if int(atomic.LoadInt32(&d.idx)) != len(d.ops) {
		t.Fatalf("not all operations consumed: %d/%d", atomic.LoadInt32(&d.idx), len(d.ops))
	}
}

func (d *queueDriver) Open(string) (driver.Conn, error) {
	return &mockConn{driver: d}, nil
}

type mockConn struct {
	driver *queueDriver
}

func (c *mockConn) Prepare(query string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepare not supported: %s", query)
}

func (c *mockConn) Close() error { return nil }

func (c *mockConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *mockConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	op, err := c.next(opBegin, "")
	if err != nil {
		return nil, err
	}
	if op.err != nil {
		return nil, op.err
	}
	return &mockTx{driver: c.driver}, nil
}

func (c *mockConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	op, err := c.next(opExec, query)
	if err != nil {
		return nil, err
	}
	if op.err != nil {
		return nil, op.err
	}
	return op.result, nil
}

func (c *mockConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	op, err := c.next(opQuery, query)
	if err != nil {
		return nil, err
	}
	if op.err != nil {
		return nil, op.err
	}
	return &mockRows{columns: op.rows.columns, values: op.rows.values}, nil
}

func (c *mockConn) Ping(context.Context) error { return nil }

func (c *mockConn) next(expected operationType, query string) (*mockOperation, error) {
	idx := int(atomic.LoadInt32(&c.driver.idx))
	if idx >= len(c.driver.ops) {
		return nil, fmt.Errorf("unexpected operation: %v", expected)
	}
	op := &c.driver.ops[idx]
	if op.typ != expected {
		return nil, fmt.Errorf("expected operation %v, got %v", expected, op.typ)
	}
	atomic.AddInt32(&c.driver.idx, 1)
	if op.query != "" && normalizeSQL(op.query) != normalizeSQL(query) {
		return nil, fmt.Errorf("unexpected query. want %q got %q", normalizeSQL(op.query), normalizeSQL(query))
	}
	return op, nil
}

type mockTx struct {
	driver *queueDriver
}

func (t *mockTx) Commit() error   { return t.next(opCommit) }
func (t *mockTx) Rollback() error { return t.next(opRollback) }

func (t *mockTx) next(expected operationType) error {
	idx := int(atomic.LoadInt32(&t.driver.idx))
	if idx >= len(t.driver.ops) {
		return fmt.Errorf("unexpected operation: %v", expected)
	}
	op := &t.driver.ops[idx]
	if op.typ != expected {
		return fmt.Errorf("expected operation %v, got %v", expected, op.typ)
	}
	atomic.AddInt32(&t.driver.idx, 1)
	return op.err
}

type mockRows struct {
	columns []string
	values  [][]driver.Value
	idx     int
}

func (r *mockRows) Columns() []string { return r.columns }
func (r *mockRows) Close() error      { return nil }

func (r *mockRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.idx])
	r.idx++
	return nil
}

func normalizeSQL(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriterShiftsBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")

	w, err := newRotatingWriter(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	w.maxSize = 16
	defer w.Close()

	for _, line := range []string{"first-entry-xxxx\n", "second-entry-xxx\n", "third-entry-xxxx\n"} {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read current: %v", err)
	}
	if !strings.Contains(string(current), "third") {
		t.Fatalf("expected newest entry in current file, got %q", current)
	}
	first, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !strings.Contains(string(first), "second") {
		t.Fatalf("expected previous entry in first backup, got %q", first)
	}
	if _, err := os.Stat(path + ".2"); err != nil {
		t.Fatalf("expected second backup: %v", err)
	}
}

func TestNamedAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	Use(slog.New(slog.NewJSONHandler(&buf, nil)))

	Named("discovery").Info("hello")
	if !strings.Contains(buf.String(), `"component":"discovery"`) {
		t.Fatalf("expected component attribute, got %s", buf.String())
	}
}

func TestInitWithAuditFile(t *testing.T) {
	dir := t.TempDir()
	auditPath := filepath.Join(dir, "audit", "ledger.log")
	if err := Init(Config{Level: "debug", Format: "text", OutputPaths: []string{"discard"}, Audit: AuditConfig{Enabled: true, Path: auditPath}}); err != nil {
		t.Fatalf("init: %v", err)
	}
	Audit().Info("ledger submission", slog.String("method", "transfer_hbar_tool"))
	if err := Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	content, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("read audit: %v", err)
	}
	if !strings.Contains(string(content), "transfer_hbar_tool") {
		t.Fatalf("audit entry missing: %s", content)
	}
}

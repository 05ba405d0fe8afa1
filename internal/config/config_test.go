package config

import (
	"os"
	"path/filepath"
	"testing"

	"hedera-agent-kit/pkg/tool"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentkit.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	t.Setenv("TEST_OPERATOR_KEY", "302e020100300506032b657004220420db484b828e64b2d8f12ce3c0a0e93a0b8cce7af1bb8f39c97732394482538e10")
	path := writeConfig(t, `{
  "ledger": {"operator_id": "0.0.2", "operator_key_env": "TEST_OPERATOR_KEY", "networks_file": "networks.yaml"},
  "plugins": {"config_file": "plugins.yaml"}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	dir := filepath.Dir(path)
	if cfg.Server.Transport != "stdio" || cfg.Ledger.Network != "testnet" || cfg.Agent.Mode != "autonomous" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Ledger.OperatorKey == "" {
		t.Fatalf("operator key should come from the environment")
	}
	if cfg.Ledger.NetworksFile != filepath.Join(dir, "networks.yaml") || cfg.Plugins.ConfigFile != filepath.Join(dir, "plugins.yaml") {
		t.Fatalf("relative paths not resolved: %q %q", cfg.Ledger.NetworksFile, cfg.Plugins.ConfigFile)
	}
	if cfg.Runtime.DataDir != filepath.Join(dir, "data") || cfg.Logging.OutputPaths[0] != "stderr" {
		t.Fatalf("unexpected runtime defaults: %+v", cfg.Runtime)
	}
	if cfg.Ledger.RequestTimeout().Seconds() != 30 {
		t.Fatalf("unexpected timeout %v", cfg.Ledger.RequestTimeout())
	}
}

func TestLoadReturnBytesWithoutOperator(t *testing.T) {
	path := writeConfig(t, `{"agent": {"mode": "RETURN_BYTES", "account_id": "0.0.1001"}, "ledger": {"operator_key_env": "UNSET_KEY_FOR_TEST", "operator_id_env": "UNSET_ID_FOR_TEST"}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	hctx := cfg.ToolContext()
	if hctx.Mode != tool.ModeReturnBytes || hctx.AccountID != "0.0.1001" {
		t.Fatalf("unexpected tool context %+v", hctx)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"autonomous without operator": `{"ledger": {"operator_key_env": "UNSET_KEY_FOR_TEST", "operator_id_env": "UNSET_ID_FOR_TEST"}}`,
		"unknown transport":           `{"server": {"transport": "grpc"}, "agent": {"mode": "returnBytes", "account_id": "0.0.5"}}`,
		"unknown mode":                `{"agent": {"mode": "manual"}}`,
		"mysql without dsn":           `{"agent": {"mode": "returnBytes", "account_id": "0.0.5"}, "storage": {"invocations": {"driver": "mysql"}}}`,
		"unknown outbox":              `{"agent": {"mode": "returnBytes", "account_id": "0.0.5"}, "outbox": {"driver": "kafka"}}`,
		"broken json":                 `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

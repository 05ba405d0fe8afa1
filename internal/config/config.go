package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hedera-agent-kit/pkg/logger"
	"hedera-agent-kit/pkg/tool"
)

// EnvConfigPath 指定配置文件路径的环境变量。
const EnvConfigPath = "AGENTKIT_CONFIG"

// DefaultPath 是未设置 AGENTKIT_CONFIG 时使用的配置文件。
const DefaultPath = "configs/agentkit.json"

// Config 描述守护进程启动阶段需要加载的全部配置。
type Config struct {
	Server  ServerConfig  `json:"server"`
	Ledger  LedgerConfig  `json:"ledger"`
	Agent   AgentConfig   `json:"agent"`
	Mirror  MirrorConfig  `json:"mirror"`
	Outbox  OutboxConfig  `json:"outbox"`
	Storage StorageConfig `json:"storage"`
	Plugins PluginsConfig `json:"plugins"`
	Logging logger.Config `json:"logging"`
	Runtime RuntimeConfig `json:"runtime"`
}

// ServerConfig 决定对外暴露的方式：stdio 上的 MCP，或 HTTP 上的 REST。
type ServerConfig struct {
	Transport   string `json:"transport"`
	Address     string `json:"address"`
	MetricsAddr string `json:"metrics_address"`
}

// LedgerConfig 描述 Hedera 网络与运营账户。
type LedgerConfig struct {
	Network      string `json:"network"`
	NetworksFile string `json:"networks_file"`
	OperatorID   string `json:"operator_id"`
	// OperatorKey 允许直接写在配置中，但推荐通过 OperatorKeyEnv 指定的环境变量提供。
	OperatorKey     string `json:"operator_key"`
	OperatorKeyEnv  string `json:"operator_key_env"`
	OperatorIDEnv   string `json:"operator_id_env"`
	KeyType         string `json:"key_type"`
	RequestTimeoutS int    `json:"request_timeout_seconds"`
}

// RequestTimeout 返回账本请求超时。
func (l LedgerConfig) RequestTimeout() time.Duration {
	return time.Duration(l.RequestTimeoutS) * time.Second
}

// AgentConfig 是工具上下文：执行模式、用户账户与工具白名单。
type AgentConfig struct {
	Mode             string   `json:"mode"`
	AccountID        string   `json:"account_id"`
	AccountPublicKey string   `json:"account_public_key"`
	Tools            []string `json:"tools"`
}

// MirrorConfig 配置镜像节点访问、限流与缓存。
type MirrorConfig struct {
	BaseURL           string      `json:"base_url"`
	TimeoutS          int         `json:"timeout_seconds"`
	RequestsPerSecond float64     `json:"requests_per_second"`
	Burst             int         `json:"burst"`
	Cache             string      `json:"cache"`
	CacheTTLS         int         `json:"cache_ttl_seconds"`
	Redis             RedisConfig `json:"redis"`
}

// OutboxConfig 选择签名请求的投递方式：none、memory、redis 或 rabbitmq。
type OutboxConfig struct {
	Driver   string         `json:"driver"`
	Redis    RedisConfig    `json:"redis"`
	RabbitMQ RabbitMQConfig `json:"rabbitmq"`
}

// RedisConfig 描述 Redis 连接。
type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	// Key 在缓存中作为前缀，在队列中作为 list 名称。
	Key string `json:"key"`
}

// RabbitMQConfig 描述 RabbitMQ 连接。
type RabbitMQConfig struct {
	URL   string `json:"url"`
	Queue string `json:"queue"`
}

// StorageConfig 描述调用审计记录的存储。
type StorageConfig struct {
	Invocations InvocationStoreConfig `json:"invocations"`
}

// InvocationStoreConfig 支持 none、memory（本地文件）与 mysql。
type InvocationStoreConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
	DSNEnv string `json:"dsn_env"`
}

// PluginsConfig 指向外部插件的 YAML 配置。
type PluginsConfig struct {
	ConfigFile string `json:"config_file"`
}

// RuntimeConfig 用于放置运行时的通用参数。
type RuntimeConfig struct {
	DataDir string `json:"data_dir"`
}

// LoadFromEnv 读取 AGENTKIT_CONFIG 指定的配置文件，未设置时使用默认路径。
func LoadFromEnv() (*Config, error) {
	path := strings.TrimSpace(os.Getenv(EnvConfigPath))
	if path == "" {
		path = DefaultPath
	}
	return Load(path)
}

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开配置文件失败: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Server.Transport == "" {
		c.Server.Transport = "stdio"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	if c.Ledger.Network == "" {
		c.Ledger.Network = "testnet"
	}
	if c.Ledger.OperatorKeyEnv == "" {
		c.Ledger.OperatorKeyEnv = "HEDERA_OPERATOR_KEY"
	}
	if c.Ledger.OperatorIDEnv == "" {
		c.Ledger.OperatorIDEnv = "HEDERA_OPERATOR_ID"
	}
	if c.Ledger.RequestTimeoutS <= 0 {
		c.Ledger.RequestTimeoutS = 30
	}
	c.Ledger.NetworksFile = resolvePath(baseDir, c.Ledger.NetworksFile)

	if c.Agent.Mode == "" {
		c.Agent.Mode = string(tool.ModeAutonomous)
	}

	if c.Mirror.TimeoutS <= 0 {
		c.Mirror.TimeoutS = 10
	}
	if c.Mirror.RequestsPerSecond == 0 {
		c.Mirror.RequestsPerSecond = 20
	}
	if c.Mirror.Burst <= 0 {
		c.Mirror.Burst = 5
	}
	if c.Mirror.Cache == "" {
		c.Mirror.Cache = "memory"
	}
	if c.Mirror.CacheTTLS <= 0 {
		c.Mirror.CacheTTLS = 30
	}
	if c.Mirror.Redis.Key == "" {
		c.Mirror.Redis.Key = "agentkit:mirror:"
	}

	if c.Outbox.Driver == "" {
		c.Outbox.Driver = "none"
	}
	if c.Outbox.Redis.Key == "" {
		c.Outbox.Redis.Key = "agentkit:signing"
	}
	if c.Outbox.RabbitMQ.Queue == "" {
		c.Outbox.RabbitMQ.Queue = "agentkit.signing"
	}

	if c.Storage.Invocations.Driver == "" {
		c.Storage.Invocations.Driver = "memory"
	}

	c.Plugins.ConfigFile = resolvePath(baseDir, c.Plugins.ConfigFile)

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	// stdio 传输占用标准输出，日志只能写到标准错误。
	if len(c.Logging.OutputPaths) == 0 {
		c.Logging.OutputPaths = []string{"stderr"}
	}

	if c.Runtime.DataDir == "" {
		c.Runtime.DataDir = filepath.Join(baseDir, "data")
	} else if !filepath.IsAbs(c.Runtime.DataDir) {
		c.Runtime.DataDir = filepath.Join(baseDir, c.Runtime.DataDir)
	}
	if c.Logging.Audit.Enabled && c.Logging.Audit.Path == "" {
		c.Logging.Audit.Path = filepath.Join(c.Runtime.DataDir, "audit.log")
	}
}

// applyEnv 用环境变量补齐未写入配置文件的敏感信息。
func (c *Config) applyEnv() {
	if c.Ledger.OperatorKey == "" {
		c.Ledger.OperatorKey = strings.TrimSpace(os.Getenv(c.Ledger.OperatorKeyEnv))
	}
	if c.Ledger.OperatorID == "" {
		c.Ledger.OperatorID = strings.TrimSpace(os.Getenv(c.Ledger.OperatorIDEnv))
	}
	if c.Storage.Invocations.DSN == "" && c.Storage.Invocations.DSNEnv != "" {
		c.Storage.Invocations.DSN = strings.TrimSpace(os.Getenv(c.Storage.Invocations.DSNEnv))
	}
}

// Validate 检查互相依赖的配置项。
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("未知的传输方式 %q", c.Server.Transport)
	}
	mode, err := tool.ParseMode(c.Agent.Mode)
	if err != nil {
		return fmt.Errorf("agent.mode 无效: %w", err)
	}
	c.Agent.Mode = string(mode)
	if mode == tool.ModeReturnBytes && c.Agent.AccountID == "" && c.Ledger.OperatorID == "" {
		return errors.New("returnBytes 模式需要 agent.account_id 或运营账户")
	}
	if mode == tool.ModeAutonomous && (c.Ledger.OperatorID == "" || c.Ledger.OperatorKey == "") {
		return errors.New("autonomous 模式需要运营账户 ID 与私钥")
	}
	switch c.Mirror.Cache {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("未知的镜像缓存 %q", c.Mirror.Cache)
	}
	switch c.Outbox.Driver {
	case "none", "memory", "redis", "rabbitmq":
	default:
		return fmt.Errorf("未知的签名队列驱动 %q", c.Outbox.Driver)
	}
	switch c.Storage.Invocations.Driver {
	case "none", "memory":
	case "mysql":
		if c.Storage.Invocations.DSN == "" {
			return errors.New("mysql 调用存储需要 dsn")
		}
	default:
		return fmt.Errorf("未知的调用存储驱动 %q", c.Storage.Invocations.Driver)
	}
	return nil
}

// ToolContext 返回配置对应的工具上下文（不含镜像服务）。
func (c *Config) ToolContext() tool.Context {
	return tool.Context{
		AccountID:        c.Agent.AccountID,
		AccountPublicKey: c.Agent.AccountPublicKey,
		Mode:             tool.Mode(c.Agent.Mode),
	}
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

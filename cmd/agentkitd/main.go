package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hedera-agent-kit/internal/adapter/mcp"
	"hedera-agent-kit/internal/api"
	"hedera-agent-kit/internal/config"
	"hedera-agent-kit/internal/observability/metrics"
	"hedera-agent-kit/internal/outbox"
	"hedera-agent-kit/internal/storage/mysql"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/logger"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/plugin"
	"hedera-agent-kit/pkg/toolkit"
)

// main 是 agentkitd 守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("agentkitd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Runtime.DataDir, 0o755); err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	defer logger.Sync()
	applog := logger.Named("agentkitd")

	networks, err := ledger.LoadNetworks(cfg.Ledger.NetworksFile)
	if err != nil {
		return err
	}
	client, err := ledger.NewHederaClient(ledger.ClientConfig{
		Network:        cfg.Ledger.Network,
		OperatorID:     cfg.Ledger.OperatorID,
		OperatorKey:    cfg.Ledger.OperatorKey,
		KeyType:        cfg.Ledger.KeyType,
		RequestTimeout: cfg.Ledger.RequestTimeout(),
		Definitions:    networks,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	mirrorService, closeMirror, err := buildMirror(ctx, cfg, networks)
	if err != nil {
		return err
	}
	defer closeMirror()

	hctx := cfg.ToolContext()
	hctx.Mirror = mirrorService

	opts := []toolkit.Option{toolkit.WithRecorder(metrics.Recorder{})}

	signing, err := buildOutbox(ctx, cfg)
	if err != nil {
		return err
	}
	if signing != nil {
		defer func() {
			if err := signing.Close(); err != nil {
				applog.Warn("关闭签名队列失败", slog.Any("error", err))
			}
		}()
		opts = append(opts, toolkit.WithSigningOutbox(signing))
	}

	repo, err := buildInvocationStore(ctx, cfg)
	if err != nil {
		return err
	}
	if repo != nil {
		if closer, ok := repo.(interface{ Close() error }); ok {
			defer closer.Close()
		}
		opts = append(opts, toolkit.WithRecorder(mysql.Recorder{Repo: repo}))
	}

	plugins, err := loadPlugins(cfg)
	if err != nil {
		return err
	}

	kit, err := toolkit.New(client, toolkit.Configuration{
		Context:  hctx,
		Tools:    cfg.Agent.Tools,
		Plugins:  plugins,
		Networks: networks,
	}, opts...)
	if err != nil {
		return err
	}

	if cfg.Server.MetricsAddr != "" {
		go func() {
			if err := metrics.StartServer(ctx, cfg.Server.MetricsAddr); err != nil && !errors.Is(err, context.Canceled) {
				applog.Error("指标服务异常退出", slog.Any("error", err))
			}
		}()
	}

	switch cfg.Server.Transport {
	case "http":
		err = api.NewServer(cfg.Server.Address, kit).Start(ctx)
	default:
		err = mcp.ServeStdio(ctx, kit)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	applog.Info("agentkitd 已退出")
	return nil
}

func buildMirror(ctx context.Context, cfg *config.Config, networks ledger.Networks) (mirror.Service, func(), error) {
	noop := func() {}
	base := cfg.Mirror.BaseURL
	if base == "" {
		if def, err := networks.Lookup(cfg.Ledger.Network); err == nil && def.MirrorURL != "" {
			base = def.MirrorURL
		} else {
			base = mirror.BaseURL(cfg.Ledger.Network)
		}
	}
	httpService, err := mirror.NewHTTPService(mirror.HTTPConfig{
		BaseURL:           base,
		Timeout:           time.Duration(cfg.Mirror.TimeoutS) * time.Second,
		RequestsPerSecond: cfg.Mirror.RequestsPerSecond,
		Burst:             cfg.Mirror.Burst,
	})
	if err != nil {
		return nil, noop, err
	}
	ttl := time.Duration(cfg.Mirror.CacheTTLS) * time.Second
	switch cfg.Mirror.Cache {
	case "none":
		return httpService, noop, nil
	case "redis":
		cache, err := mirror.NewRedisCache(ctx, mirror.RedisCacheConfig{
			Address:  cfg.Mirror.Redis.Address,
			Password: cfg.Mirror.Redis.Password,
			DB:       cfg.Mirror.Redis.DB,
			Prefix:   cfg.Mirror.Redis.Key,
		})
		if err != nil {
			return nil, noop, err
		}
		return mirror.NewCachedService(httpService, cache, ttl), func() { _ = cache.Close() }, nil
	default:
		return mirror.NewCachedService(httpService, mirror.NewMemoryCache(), ttl), noop, nil
	}
}

func buildOutbox(ctx context.Context, cfg *config.Config) (outbox.Publisher, error) {
	switch cfg.Outbox.Driver {
	case "none":
		return nil, nil
	case "memory":
		q := outbox.NewMemoryOutbox(1024)
		// 进程内队列只做审计，外部签名方通过 redis 或 rabbitmq 接入。
		go func() {
			_ = q.Consume(ctx, 1, func(_ context.Context, req outbox.SigningRequest) error {
				logger.Audit().Info("签名请求待处理", slog.String("request_id", req.ID), slog.String("transaction_id", req.TransactionID))
				return nil
			})
		}()
		return q, nil
	case "redis":
		return outbox.NewRedisOutbox(ctx, outbox.RedisConfig{
			Address:  cfg.Outbox.Redis.Address,
			Password: cfg.Outbox.Redis.Password,
			DB:       cfg.Outbox.Redis.DB,
			Queue:    cfg.Outbox.Redis.Key,
		})
	case "rabbitmq":
		return outbox.NewRabbitMQOutbox(outbox.RabbitMQConfig{
			URL:     cfg.Outbox.RabbitMQ.URL,
			Queue:   cfg.Outbox.RabbitMQ.Queue,
			Durable: true,
		})
	default:
		return nil, fmt.Errorf("未知的签名队列驱动: %s", cfg.Outbox.Driver)
	}
}

func buildInvocationStore(ctx context.Context, cfg *config.Config) (mysql.InvocationRepository, error) {
	switch cfg.Storage.Invocations.Driver {
	case "none":
		return nil, nil
	case "mysql":
		return mysql.NewSQLInvocationRepository(ctx, mysql.Config{DSN: cfg.Storage.Invocations.DSN})
	default:
		return mysql.NewMemoryInvocationRepository(cfg.Runtime.DataDir)
	}
}

// loadPlugins 加载外部插件；单个插件失败只记录日志，不影响启动。
func loadPlugins(cfg *config.Config) ([]plugin.Plugin, error) {
	if cfg.Plugins.ConfigFile == "" {
		return nil, nil
	}
	managerCfg, err := plugin.LoadManagerConfig(cfg.Plugins.ConfigFile)
	if err != nil {
		return nil, err
	}
	manager := plugin.NewManager(nil)
	if err := manager.LoadConfigured(managerCfg); err != nil {
		logger.Named("agentkitd").Warn("部分外部插件加载失败", slog.Any("error", err))
	}
	return manager.Registry().Plugins(), nil
}

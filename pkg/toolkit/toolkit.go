// Package toolkit is the entry point for host applications. It discovers the
// core and plugin tools for one tool context and invokes them by method name.
package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/internal/discovery"
	"hedera-agent-kit/internal/outbox"
	"hedera-agent-kit/internal/plugins/core"
	"hedera-agent-kit/internal/strategy"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/logger"
	"hedera-agent-kit/pkg/plugin"
	"hedera-agent-kit/pkg/tool"
)

// Configuration is what a host supplies when creating a toolkit.
type Configuration struct {
	// Context is shared by every invocation.
	Context tool.Context
	// Tools is an allow-list of method names. Empty means every tool.
	Tools []string
	// Plugins are added on top of the core plugins.
	Plugins []plugin.Plugin
	// Networks provides signing nodes and the ERC-20 factory. The zero value
	// means the public networks.
	Networks ledger.Networks
}

// Invocation describes one finished Invoke call.
type Invocation struct {
	Method    string
	Mode      tool.Mode
	AccountID string
	Network   string
	Success   bool
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Recorder observes invocations. Errors are logged and otherwise ignored.
type Recorder interface {
	RecordInvocation(ctx context.Context, inv Invocation) error
}

// Option customises a Toolkit.
type Option func(*Toolkit)

// WithRecorder adds a recorder. It may be given more than once.
func WithRecorder(r Recorder) Option {
	return func(t *Toolkit) {
		if r != nil {
			t.recorders = append(t.recorders, r)
		}
	}
}

// WithSigningOutbox publishes every frozen transaction to p.
func WithSigningOutbox(p outbox.Publisher) Option {
	return func(t *Toolkit) { t.publisher = p }
}

// WithSigningNodes overrides the node accounts placed on frozen transactions.
func WithSigningNodes(nodes ...hedera.AccountID) Option {
	return func(t *Toolkit) { t.signingNodes = nodes }
}

// Toolkit holds the discovered tools for one context.
type Toolkit struct {
	client       ledger.Client
	hctx         tool.Context
	tools        []tool.Tool
	index        map[string]int
	recorders    []Recorder
	publisher    outbox.Publisher
	signingNodes []hedera.AccountID
}

// New discovers the tools allowed by cfg.
func New(client ledger.Client, cfg Configuration, opts ...Option) (*Toolkit, error) {
	if client == nil {
		return nil, fmt.Errorf("toolkit: ledger client is required")
	}
	mode, err := tool.ParseMode(string(cfg.Context.Mode))
	if err != nil {
		return nil, fmt.Errorf("toolkit: %w", err)
	}
	cfg.Context.Mode = mode
	networks := cfg.Networks
	if len(networks.Networks) == 0 {
		networks = ledger.DefaultNetworks()
	}

	t := &Toolkit{client: client, hctx: cfg.Context}
	for _, opt := range opts {
		opt(t)
	}
	if t.signingNodes == nil {
		if def, err := networks.Lookup(client.Network()); err == nil {
			nodes, err := def.SigningNodeIDs()
			if err != nil {
				return nil, fmt.Errorf("toolkit: %w", err)
			}
			t.signingNodes = nodes
		}
	}

	dcfg := discovery.Configuration{Tools: cfg.Tools, Plugins: cfg.Plugins}
	t.tools = discovery.NewFromConfiguration(dcfg, core.Plugins(networks)...).GetAllTools(cfg.Context, dcfg)
	t.index = make(map[string]int, len(t.tools))
	for i, tl := range t.tools {
		t.index[tl.Method] = i
	}
	logger.Named("toolkit").Info("toolkit ready",
		slog.Int("tools", len(t.tools)),
		slog.String("mode", string(cfg.Context.EffectiveMode())),
		slog.String("network", client.Network()))
	return t, nil
}

// Context returns the tool context shared by every invocation.
func (t *Toolkit) Context() tool.Context { return t.hctx }

// Client returns the ledger client.
func (t *Toolkit) Client() ledger.Client { return t.client }

// Tools returns the discovered tools in discovery order.
func (t *Toolkit) Tools() []tool.Tool {
	out := make([]tool.Tool, len(t.tools))
	copy(out, t.tools)
	return out
}

// Definitions describes every tool.
func (t *Toolkit) Definitions() []tool.Definition {
	out := make([]tool.Definition, 0, len(t.tools))
	for _, tl := range t.tools {
		out = append(out, tl.Describe())
	}
	return out
}

// Tool returns the tool registered under method.
func (t *Toolkit) Tool(method string) (tool.Tool, bool) {
	i, ok := t.index[method]
	if !ok {
		return tool.Tool{}, false
	}
	return t.tools[i], true
}

// Invoke runs method with raw params. It never returns a Go error; failures
// are reported in the Result.
func (t *Toolkit) Invoke(ctx context.Context, method string, params json.RawMessage) tool.Result {
	started := time.Now()
	tl, ok := t.Tool(method)
	var res tool.Result
	if !ok {
		res = tool.Failure(fmt.Sprintf("unknown tool %q", method))
	} else {
		ctx = strategy.WithOptions(ctx, strategy.Options{SigningNodes: t.signingNodes, Publisher: t.publisher})
		res = tl.Execute(ctx, t.client, t.hctx, params)
	}
	t.record(ctx, Invocation{
		Method:    method,
		Mode:      t.hctx.EffectiveMode(),
		AccountID: t.hctx.AccountID,
		Network:   t.client.Network(),
		Success:   !res.Failed(),
		Error:     res.Error,
		StartedAt: started,
		Duration:  time.Since(started),
	})
	return res
}

func (t *Toolkit) record(ctx context.Context, inv Invocation) {
	for _, r := range t.recorders {
		if err := r.RecordInvocation(context.WithoutCancel(ctx), inv); err != nil {
			logger.Named("toolkit").Warn("failed to record invocation", slog.String("method", inv.Method), slog.Any("error", err))
		}
	}
}

package toolkit

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/internal/outbox"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/plugin"
	"hedera-agent-kit/pkg/tool"
)

// Builder assembles a Toolkit step by step.
//
//	kit, err := toolkit.NewBuilder(client).
//		WithMode(tool.ModeReturnBytes).
//		WithAccount("0.0.1234", "").
//		WithMirror(m).
//		Build()
type Builder struct {
	client ledger.Client
	cfg    Configuration
	opts   []Option
}

// NewBuilder starts a builder for client in autonomous mode.
func NewBuilder(client ledger.Client) *Builder {
	return &Builder{client: client, cfg: Configuration{Context: tool.Context{Mode: tool.ModeAutonomous}}}
}

// WithMode sets the execution mode.
func (b *Builder) WithMode(mode tool.Mode) *Builder {
	b.cfg.Context.Mode = mode
	return b
}

// WithAccount sets the user account and, optionally, its public key.
func (b *Builder) WithAccount(accountID, publicKey string) *Builder {
	b.cfg.Context.AccountID = accountID
	b.cfg.Context.AccountPublicKey = publicKey
	return b
}

// WithMirror sets the mirror node service.
func (b *Builder) WithMirror(m mirror.Service) *Builder {
	b.cfg.Context.Mirror = m
	return b
}

// WithTools restricts the toolkit to the named methods.
func (b *Builder) WithTools(methods ...string) *Builder {
	b.cfg.Tools = append(b.cfg.Tools, methods...)
	return b
}

// WithPlugins adds plugins on top of the core ones.
func (b *Builder) WithPlugins(plugins ...plugin.Plugin) *Builder {
	b.cfg.Plugins = append(b.cfg.Plugins, plugins...)
	return b
}

// WithNetworks sets the network definitions.
func (b *Builder) WithNetworks(n ledger.Networks) *Builder {
	b.cfg.Networks = n
	return b
}

// WithRecorder adds an invocation recorder.
func (b *Builder) WithRecorder(r Recorder) *Builder {
	b.opts = append(b.opts, WithRecorder(r))
	return b
}

// WithSigningOutbox publishes frozen transactions to p.
func (b *Builder) WithSigningOutbox(p outbox.Publisher) *Builder {
	b.opts = append(b.opts, WithSigningOutbox(p))
	return b
}

// WithSigningNodes overrides the signing nodes.
func (b *Builder) WithSigningNodes(nodes ...hedera.AccountID) *Builder {
	b.opts = append(b.opts, WithSigningNodes(nodes...))
	return b
}

// Build creates the toolkit.
func (b *Builder) Build() (*Toolkit, error) {
	return New(b.client, b.cfg, b.opts...)
}
